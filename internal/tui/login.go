package tui

import (
	"cardmatch/internal/auth"
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Authenticator is the identity surface the UI drives.
type Authenticator interface {
	Resolve(ctx context.Context) (*auth.User, error)
	Current() *auth.User
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, email, password string) (*auth.User, error)
	SignInAnonymously(ctx context.Context) (*auth.User, error)
	SignOut(ctx context.Context) error
}

// LoginResultMsg reports the outcome of a sign-in attempt.
type LoginResultMsg struct {
	User *auth.User
	Err  error
}

// Login collects credentials. Guests can continue without them.
type Login struct {
	auth     Authenticator
	email    textinput.Model
	password textinput.Model
	busy     bool
	err      error
}

func NewLogin(a Authenticator) Login {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return Login{auth: a, email: email, password: password}
}

func (l Login) Init() tea.Cmd {
	return textinput.Blink
}

func (l Login) Update(msg tea.Msg) (Login, tea.Cmd) {
	switch msg := msg.(type) {
	case LoginResultMsg:
		l.busy = false
		l.err = msg.Err
		return l, nil

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			if l.email.Focused() {
				l.email.Blur()
				return l, l.password.Focus()
			}
			l.password.Blur()
			return l, l.email.Focus()
		case "enter":
			return l.submit(l.auth.SignIn)
		case "ctrl+u":
			return l.submit(l.auth.SignUp)
		case "ctrl+g":
			l.busy = true
			a := l.auth
			return l, func() tea.Msg {
				u, err := a.SignInAnonymously(context.Background())
				return LoginResultMsg{User: u, Err: err}
			}
		}
	}

	var cmd tea.Cmd
	if l.email.Focused() {
		l.email, cmd = l.email.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return l, cmd
}

func (l Login) submit(fn func(context.Context, string, string) (*auth.User, error)) (Login, tea.Cmd) {
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()
	if email == "" || password == "" {
		l.err = errors.New("enter an email and a password")
		return l, nil
	}

	l.busy = true
	l.err = nil
	return l, func() tea.Msg {
		u, err := fn(context.Background(), email, password)
		return LoginResultMsg{User: u, Err: err}
	}
}

func (l Login) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString(l.email.View())
	b.WriteString("\n")
	b.WriteString(l.password.View())
	b.WriteString("\n\n")

	switch {
	case l.busy:
		b.WriteString(mutedStyle.Render("Signing in..."))
		b.WriteString("\n")
	case l.err != nil:
		b.WriteString(errorStyle.Render(loginErrorText(l.err)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: sign in • ctrl+u: sign up • ctrl+g: continue as guest • esc: back"))
	return b.String()
}

func loginErrorText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Wrong email or password."
	case errors.Is(err, auth.ErrEmailExists):
		return "That email is already registered."
	case errors.Is(err, auth.ErrPasswordSignIn):
		return "Email sign-in is not configured. Continue as guest instead."
	default:
		return err.Error()
	}
}
