package tui

import (
	"cardmatch/internal/questionnaire"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type loadingTickMsg struct{ id int64 }

type completionMsg struct {
	id         int64
	completion questionnaire.Completion
}

// LoadingFinishedMsg is sent once the presenter is done. Completion is the
// signal it waited for, if any.
type LoadingFinishedMsg struct {
	Completion *questionnaire.Completion
}

var loadingIDs atomic.Int64

// Loading steps through captions at a fixed interval. With a signal it
// holds on the last caption until the signal arrives, then lingers before
// finishing.
type Loading struct {
	id       int64
	title    string
	steps    []string
	step     int
	interval time.Duration
	linger   time.Duration
	signal   <-chan questionnaire.Completion

	completion *questionnaire.Completion
	finished   bool
	spinner    spinner.Model
}

// NewLoading builds a presenter. A nil signal means it finishes after the
// last step.
func NewLoading(title string, steps []string, interval, linger time.Duration, signal <-chan questionnaire.Completion) Loading {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = cursorStyle
	return Loading{
		id:       loadingIDs.Add(1),
		title:    title,
		steps:    steps,
		interval: interval,
		linger:   linger,
		signal:   signal,
		spinner:  s,
	}
}

func (l Loading) Init() tea.Cmd {
	cmds := []tea.Cmd{l.spinner.Tick}
	if l.atEnd() {
		cmds = append(cmds, l.maybeFinishCmd())
	} else {
		cmds = append(cmds, l.tick())
	}
	if l.signal != nil {
		cmds = append(cmds, waitForCompletion(l.id, l.signal))
	}
	return tea.Batch(cmds...)
}

func (l Loading) Update(msg tea.Msg) (Loading, tea.Cmd) {
	switch msg := msg.(type) {
	case loadingTickMsg:
		if msg.id != l.id || l.finished {
			return l, nil
		}
		if !l.atEnd() {
			l.step++
		}
		if !l.atEnd() {
			return l, l.tick()
		}
		return l.maybeFinish()

	case completionMsg:
		if msg.id != l.id || l.finished {
			return l, nil
		}
		c := msg.completion
		l.completion = &c
		if c.Err != nil {
			l.finished = true
			return l, func() tea.Msg { return LoadingFinishedMsg{Completion: &c} }
		}
		return l.maybeFinish()

	case spinner.TickMsg:
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd
	}
	return l, nil
}

func (l Loading) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(l.title))
	b.WriteString("\n\n")
	for i, s := range l.steps {
		switch {
		case i < l.step:
			b.WriteString(successStyle.Render("✓ " + s))
		case i == l.step:
			b.WriteString(fmt.Sprintf("%s %s", l.spinner.View(), s))
		default:
			b.WriteString(mutedStyle.Render("  " + s))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Step is the index of the caption being shown.
func (l Loading) Step() int {
	return l.step
}

func (l Loading) Finished() bool {
	return l.finished
}

func (l Loading) atEnd() bool {
	return l.step >= len(l.steps)-1
}

func (l Loading) maybeFinish() (Loading, tea.Cmd) {
	cmd := l.maybeFinishCmd()
	if cmd != nil {
		l.finished = true
	}
	return l, cmd
}

func (l Loading) maybeFinishCmd() tea.Cmd {
	if l.finished || !l.atEnd() {
		return nil
	}
	if l.signal != nil && l.completion == nil {
		return nil
	}
	c := l.completion
	return tea.Tick(l.linger, func(time.Time) tea.Msg {
		return LoadingFinishedMsg{Completion: c}
	})
}

func (l Loading) tick() tea.Cmd {
	id := l.id
	return tea.Tick(l.interval, func(time.Time) tea.Msg {
		return loadingTickMsg{id: id}
	})
}

func waitForCompletion(id int64, ch <-chan questionnaire.Completion) tea.Cmd {
	return func() tea.Msg {
		return completionMsg{id: id, completion: <-ch}
	}
}
