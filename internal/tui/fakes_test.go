package tui

import (
	"cardmatch/internal/api"
	"cardmatch/internal/auth"
	"cardmatch/internal/config"
	"cardmatch/internal/storage"
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

const sampleReply = "Here you go:\n\n1. **Card A**\n- **Annual Fee:** $0\n**Reasoning:** Cheap.\n\n2. **Card B**\n- **APR:** 20%\n"

type fakeBackend struct {
	mu       sync.Mutex
	startErr error
	deleted  []string
	chats    int
}

func (f *fakeBackend) Start(context.Context) (*api.StartResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &api.StartResponse{SessionID: "s1"}, nil
}

func (f *fakeBackend) Chat(_ context.Context, sessionID, _ string) (*api.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats++
	return &api.ChatResponse{Response: "ok", SessionID: sessionID}, nil
}

func (f *fakeBackend) SubmitProfile(_ context.Context, profile map[string]string) (*api.SubmitProfileResponse, error) {
	return &api.SubmitProfileResponse{Response: sampleReply, SessionID: profile["session_id"], IsComplete: true}, nil
}

func (f *fakeBackend) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, sessionID)
	return nil
}

type fakeAuth struct {
	user *auth.User
}

func (f *fakeAuth) Resolve(context.Context) (*auth.User, error) {
	if f.user == nil {
		return nil, errors.New("offline")
	}
	return f.user, nil
}

func (f *fakeAuth) Current() *auth.User { return f.user }

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*auth.User, error) {
	if password != "secret" {
		return nil, auth.ErrInvalidCredentials
	}
	f.user = &auth.User{ID: "u-" + email, Email: email}
	return f.user, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*auth.User, error) {
	return f.SignIn(ctx, email, password)
}

func (f *fakeAuth) SignInAnonymously(context.Context) (*auth.User, error) {
	f.user = &auth.User{ID: "guest", Anonymous: true}
	return f.user, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.user = nil
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func testStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
