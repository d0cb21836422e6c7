package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// DefaultTokenEndpoint exchanges refresh tokens for new ID tokens.
const DefaultTokenEndpoint = "https://securetoken.googleapis.com/v1/token"

// IdentityToolkit signs users in through the Firebase Identity Toolkit REST
// API.
type IdentityToolkit struct {
	svc      *identitytoolkit.Service
	apiKey   string
	tokenURL string
	client   *http.Client
}

// NewIdentityToolkit builds a client for the given web API key. A non-empty
// endpoint replaces the public one, e.g. for the auth emulator, and a
// non-empty tokenEndpoint replaces DefaultTokenEndpoint.
func NewIdentityToolkit(ctx context.Context, apiKey, endpoint, tokenEndpoint string) (*IdentityToolkit, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create identity toolkit client: %w", err)
	}
	if tokenEndpoint == "" {
		tokenEndpoint = DefaultTokenEndpoint
	}
	return &IdentityToolkit{
		svc:      svc,
		apiKey:   apiKey,
		tokenURL: tokenEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (it *IdentityToolkit) SignIn(ctx context.Context, email, password string) (*User, error) {
	resp, err := it.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError("sign in", err)
	}
	return &User{
		ID:           resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (it *IdentityToolkit) SignUp(ctx context.Context, email, password string) (*User, error) {
	return it.signup(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	})
}

// SignInAnonymously creates an account with no credentials.
func (it *IdentityToolkit) SignInAnonymously(ctx context.Context) (*User, error) {
	return it.signup(ctx, &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{})
}

func (it *IdentityToolkit) signup(ctx context.Context, req *identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest) (*User, error) {
	resp, err := it.svc.Relyingparty.SignupNewUser(req).Context(ctx).Do()
	if err != nil {
		return nil, mapError("sign up", err)
	}
	return &User{
		ID:           resp.LocalId,
		Email:        resp.Email,
		Anonymous:    req.Email == "",
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Error        *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Refresh trades a refresh token for a new ID token. The returned user
// carries only the ID and tokens.
func (it *IdentityToolkit) Refresh(ctx context.Context, refreshToken string) (*User, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	endpoint := it.tokenURL + "?" + url.Values{"key": {it.apiKey}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := it.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("refresh: decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if body.Error != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrRefreshRejected, msg)
	}
	if body.IDToken == "" {
		return nil, fmt.Errorf("%w: response has no id_token", ErrRefreshRejected)
	}

	return &User{
		ID:           body.UserID,
		IDToken:      body.IDToken,
		RefreshToken: body.RefreshToken,
	}, nil
}

// mapError turns Identity Toolkit error codes into package errors.
func mapError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case strings.HasPrefix(gerr.Message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(gerr.Message, "INVALID_PASSWORD"),
		strings.HasPrefix(gerr.Message, "INVALID_LOGIN_CREDENTIALS"):
		return ErrInvalidCredentials
	case strings.HasPrefix(gerr.Message, "EMAIL_EXISTS"):
		return ErrEmailExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
