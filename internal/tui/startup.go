package tui

import (
	"cardmatch/internal/api"
	"cardmatch/internal/questionnaire"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Starter opens a backend conversation.
type Starter interface {
	Start(ctx context.Context) (*api.StartResponse, error)
}

var (
	startupDelays = []time.Duration{800 * time.Millisecond, 600 * time.Millisecond, 500 * time.Millisecond}
	startupSettle = 400 * time.Millisecond
	startupLinger = 800 * time.Millisecond
)

type startupTickMsg struct{ id int64 }

type startupResultMsg struct {
	id        int64
	sessionID string
	err       error
}

type startupReadyMsg struct{ id int64 }

// StartupFinishedMsg carries the session opened before the questionnaire.
type StartupFinishedMsg struct {
	SessionID string
}

// Startup shows the questionnaire-loading captions and opens the backend
// session while they play.
type Startup struct {
	id        int64
	steps     []string
	step      int
	starter   Starter
	sessionID string
	err       error
	spinner   spinner.Model
}

func NewStartup(steps []string, starter Starter) Startup {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cursorStyle
	return Startup{
		id:      loadingIDs.Add(1),
		steps:   steps,
		starter: starter,
		spinner: s,
	}
}

func (s Startup) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.tick(startupDelays[0]))
}

func (s Startup) Update(msg tea.Msg) (Startup, tea.Cmd) {
	switch msg := msg.(type) {
	case startupTickMsg:
		if msg.id != s.id || s.err != nil {
			return s, nil
		}
		s.step++
		if s.step < len(startupDelays) {
			return s, s.tick(startupDelays[s.step])
		}
		return s, s.start()

	case startupResultMsg:
		if msg.id != s.id {
			return s, nil
		}
		if msg.err != nil {
			s.err = msg.err
			return s, nil
		}
		s.sessionID = msg.sessionID
		id := s.id
		return s, tea.Tick(startupSettle, func(time.Time) tea.Msg { return startupReadyMsg{id: id} })

	case startupReadyMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.step++
		session := s.sessionID
		return s, tea.Tick(startupLinger, func(time.Time) tea.Msg {
			return StartupFinishedMsg{SessionID: session}
		})

	case tea.KeyMsg:
		if s.err != nil && msg.String() == "r" {
			retry := NewStartup(s.steps, s.starter)
			return retry, retry.Init()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s Startup) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Getting things ready"))
	b.WriteString("\n\n")

	for i, caption := range s.steps {
		switch {
		case i < s.step:
			b.WriteString(successStyle.Render("✓ " + caption))
		case i == s.step && s.err == nil:
			b.WriteString(fmt.Sprintf("%s %s", s.spinner.View(), caption))
		default:
			b.WriteString(mutedStyle.Render("  " + caption))
		}
		b.WriteString("\n")
	}

	if s.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Could not connect to the recommendation service."))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("r: try again • esc: home"))
	}
	return b.String()
}

func (s Startup) Err() error {
	return s.err
}

func (s Startup) tick(d time.Duration) tea.Cmd {
	id := s.id
	return tea.Tick(d, func(time.Time) tea.Msg { return startupTickMsg{id: id} })
}

func (s Startup) start() tea.Cmd {
	id, starter := s.id, s.starter
	return func() tea.Msg {
		resp, err := starter.Start(context.Background())
		if err != nil {
			return startupResultMsg{id: id, err: err}
		}
		return startupResultMsg{id: id, sessionID: resp.SessionID}
	}
}

// signalOf adapts a pending final answer for the processing presenter.
func signalOf(p *questionnaire.Pending) <-chan questionnaire.Completion {
	if p == nil {
		return nil
	}
	return p.Done()
}
