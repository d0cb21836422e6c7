package auth

import (
	"context"

	"github.com/google/uuid"
)

// LocalIdentity issues anonymous users without contacting a service. It is
// used when no identity API key is configured.
type LocalIdentity struct{}

func (LocalIdentity) SignIn(context.Context, string, string) (*User, error) {
	return nil, ErrPasswordSignIn
}

func (LocalIdentity) SignUp(context.Context, string, string) (*User, error) {
	return nil, ErrPasswordSignIn
}

func (LocalIdentity) SignInAnonymously(context.Context) (*User, error) {
	return &User{ID: uuid.NewString(), Anonymous: true}, nil
}

// Refresh always fails. Local users carry no tokens, so they never expire.
func (LocalIdentity) Refresh(context.Context, string) (*User, error) {
	return nil, ErrRefreshRejected
}
