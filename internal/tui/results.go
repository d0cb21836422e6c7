package tui

import (
	"cardmatch/internal/recommend"
	"cardmatch/internal/storage"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// ResolveResults picks the recommendations to show. The handoff passed
// along with navigation wins, then whatever is stored. When neither holds
// any text the stored keys are cleared and ok is false.
func ResolveResults(ctx context.Context, store storage.Store, nav *storage.Handoff) (storage.Handoff, bool, error) {
	if nav != nil && nav.Valid() {
		return *nav, true, nil
	}

	stored, err := storage.LoadHandoff(ctx, store)
	if err != nil {
		return storage.Handoff{}, false, err
	}
	if stored.Valid() {
		return stored, true, nil
	}

	if err := storage.ClearHandoff(ctx, store); err != nil {
		return storage.Handoff{}, false, err
	}
	return storage.Handoff{}, false, nil
}

// Results shows parsed recommendation cards, or the raw text as markdown
// when no card could be parsed.
type Results struct {
	handoff  storage.Handoff
	cards    []recommend.Card
	viewport viewport.Model
	style    string
}

func NewResults(h storage.Handoff, width, height int) Results {
	r := Results{
		handoff:  h,
		cards:    recommend.Parse(h.Recommendations),
		viewport: viewport.New(width, height),
		style:    "auto",
	}
	r.viewport.SetContent(r.content(width))
	return r
}

func (r Results) Cards() []recommend.Card {
	return r.cards
}

// Resize fits the viewport to the terminal.
func (r Results) Resize(width, height int) Results {
	r.viewport.Width = width
	r.viewport.Height = height
	r.viewport.SetContent(r.content(width))
	return r
}

func (r Results) Update(msg tea.Msg) (Results, tea.Cmd) {
	var cmd tea.Cmd
	r.viewport, cmd = r.viewport.Update(msg)
	return r, cmd
}

func (r Results) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your recommended cards"))
	b.WriteString("\n\n")
	b.WriteString(r.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: scroll • s: start over • h: home • q: quit"))
	return b.String()
}

func (r Results) content(width int) string {
	if len(r.cards) == 0 {
		return renderMarkdown(r.handoff.Recommendations, width, r.style)
	}

	var b strings.Builder
	for _, c := range r.cards {
		b.WriteString(renderCard(c, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderCard(c recommend.Card, width int) string {
	var b strings.Builder
	b.WriteString(cardTitleStyle.Render(fmt.Sprintf("#%d %s", c.Rank, c.Name)))
	for _, d := range c.Details {
		b.WriteString("\n")
		b.WriteString(detailKeyStyle.Render(d.Key+": ") + d.Value)
	}
	if c.Reasoning != "" {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Why this card? "))
		b.WriteString(c.Reasoning)
	}

	style := cardStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(b.String())
}

func renderMarkdown(text string, width int, style string) string {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if style == "auto" {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
