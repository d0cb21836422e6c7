package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailExists        = errors.New("auth: email already registered")
	ErrPasswordSignIn     = errors.New("auth: email sign-in needs auth.api_key")
	ErrRefreshRejected    = errors.New("auth: session refresh rejected")
)

// User is a signed-in identity.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	Anonymous    bool   `json:"anonymous"`
	IDToken      string `json:"id_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Expired reports whether the user's ID token expired before now. Users
// without a token, such as local anonymous users, never expire. A token
// that cannot be read counts as expired.
func (u *User) Expired(now time.Time) bool {
	if u.IDToken == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(u.IDToken, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !now.Before(exp.Time)
}

// DisplayName is what the UI shows for the user.
func (u *User) DisplayName() string {
	switch {
	case u.Email != "":
		return u.Email
	case u.Anonymous:
		return "guest"
	default:
		return u.ID
	}
}

// IdentityProvider signs users in against an identity service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignInAnonymously(ctx context.Context) (*User, error)
	Refresh(ctx context.Context, refreshToken string) (*User, error)
}
