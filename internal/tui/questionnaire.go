package tui

import (
	"cardmatch/internal/questionnaire"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// FinalSubmittedMsg is sent when the last answer has been accepted.
type FinalSubmittedMsg struct {
	Pending *questionnaire.Pending
}

// QuestionnaireView renders the current question and forwards selections
// to the controller.
type QuestionnaireView struct {
	ctrl     *questionnaire.Controller
	cursor   int
	progress progress.Model
	notice   string
}

func NewQuestionnaireView(ctrl *questionnaire.Controller) QuestionnaireView {
	return QuestionnaireView{
		ctrl:     ctrl,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (v QuestionnaireView) Update(msg tea.Msg) (QuestionnaireView, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}

	q := v.ctrl.Current()
	switch key.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(q.Options)-1 {
			v.cursor++
		}
	case " ", "x":
		v.notice = ""
		if err := v.ctrl.Toggle(q.Options[v.cursor]); err != nil {
			v.notice = err.Error()
		}
	case "enter":
		// A single-choice question takes the highlighted option.
		if !q.MultiSelect && len(v.ctrl.Selected()) == 0 {
			_ = v.ctrl.Toggle(q.Options[v.cursor])
		}
		pending, err := v.ctrl.Submit()
		switch {
		case errors.Is(err, questionnaire.ErrNoSelection):
			v.notice = "Select at least one option."
			return v, nil
		case err != nil:
			v.notice = err.Error()
			return v, nil
		}
		v.notice = ""
		v.cursor = 0
		if pending != nil {
			return v, func() tea.Msg { return FinalSubmittedMsg{Pending: pending} }
		}
	}
	return v, nil
}

func (v QuestionnaireView) View() string {
	q := v.ctrl.Current()
	selected := make(map[string]bool)
	for _, s := range v.ctrl.Selected() {
		selected[s] = true
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Question %d of %d", v.ctrl.Index()+1, v.ctrl.Total())))
	b.WriteString("\n")
	b.WriteString(v.progress.ViewAs(v.ctrl.Progress()))
	b.WriteString("\n\n")
	b.WriteString(headlineStyle.Render(q.Prompt))
	b.WriteString("\n")
	if q.MultiSelect {
		b.WriteString(mutedStyle.Render("Select all that apply."))
		b.WriteString("\n")
	}

	for i, o := range q.Options {
		pointer := "  "
		if i == v.cursor {
			pointer = cursorStyle.Render("> ")
		}
		mark := "( )"
		if q.MultiSelect {
			mark = "[ ]"
		}
		line := o
		if selected[o] {
			if q.MultiSelect {
				mark = "[x]"
			} else {
				mark = "(•)"
			}
			line = selectedStyle.Render(o)
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", pointer, mark, line))
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: move • space: select • enter: next • q: quit"))
	return b.String()
}

func (v QuestionnaireView) Cursor() int {
	return v.cursor
}
