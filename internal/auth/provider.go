package auth

import (
	"cardmatch/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Provider owns the current user. The user is persisted in the store so a
// later run resumes the same identity.
type Provider struct {
	identity IdentityProvider
	store    storage.Store
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.RWMutex
	current *User
}

func NewProvider(identity IdentityProvider, store storage.Store, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		identity: identity,
		store:    store,
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

// Current returns the resolved user, or nil before Resolve completes.
func (p *Provider) Current() *User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Resolve restores the persisted user. An expired user is refreshed with
// its refresh token. Only when there is no user, or the refresh fails, is
// the user signed in anonymously.
func (p *Provider) Resolve(ctx context.Context) (*User, error) {
	u := p.Current()
	if u == nil {
		var err error
		if u, err = p.load(ctx); err != nil {
			p.logger.Warn("discarding stored session", zap.Error(err))
		}
	}

	if u != nil && u.Expired(p.now()) {
		u = p.refresh(ctx, u)
	}
	if u != nil {
		p.set(u)
		return u, nil
	}

	return p.SignInAnonymously(ctx)
}

// refresh renews an expired user, or returns nil when that is not possible.
func (p *Provider) refresh(ctx context.Context, u *User) *User {
	if u.RefreshToken == "" {
		p.logger.Info("stored session expired", zap.String("user_id", u.ID))
		return nil
	}

	fresh, err := p.identity.Refresh(ctx, u.RefreshToken)
	if err != nil {
		p.logger.Warn("session refresh failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil
	}
	if fresh.ID != "" && fresh.ID != u.ID {
		p.logger.Warn("refresh returned another user", zap.String("user_id", u.ID), zap.String("got", fresh.ID))
		return nil
	}

	renewed := *u
	renewed.IDToken = fresh.IDToken
	if fresh.RefreshToken != "" {
		renewed.RefreshToken = fresh.RefreshToken
	}
	if err := p.save(ctx, &renewed); err != nil {
		p.logger.Warn("persist refreshed session", zap.Error(err))
	}
	return &renewed
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*User, error) {
	u, err := p.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return u, p.save(ctx, u)
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*User, error) {
	u, err := p.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return u, p.save(ctx, u)
}

func (p *Provider) SignInAnonymously(ctx context.Context) (*User, error) {
	u, err := p.identity.SignInAnonymously(ctx)
	if err != nil {
		return nil, fmt.Errorf("anonymous sign-in: %w", err)
	}
	return u, p.save(ctx, u)
}

// SignOut forgets the current user.
func (p *Provider) SignOut(ctx context.Context) error {
	p.set(nil)
	if err := p.store.Delete(ctx, storage.KeyAuthSession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	p.logger.Info("signed out")
	return nil
}

func (p *Provider) set(u *User) {
	p.mu.Lock()
	p.current = u
	p.mu.Unlock()
}

func (p *Provider) save(ctx context.Context, u *User) error {
	p.set(u)
	p.logger.Info("signed in", zap.String("user_id", u.ID), zap.Bool("anonymous", u.Anonymous))

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := p.store.Set(ctx, storage.KeyAuthSession, string(data)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (p *Provider) load(ctx context.Context) (*User, error) {
	raw, err := p.store.Get(ctx, storage.KeyAuthSession)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if u.ID == "" {
		return nil, errors.New("stored session has no user id")
	}
	return &u, nil
}
