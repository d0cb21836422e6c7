package cli

import (
	"cardmatch/internal/api"
	"cardmatch/internal/recommend"
	"cardmatch/internal/storage"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// printResults writes parsed cards, or the raw text as markdown when the
// text holds no recognisable cards.
func printResults(w io.Writer, h storage.Handoff, width int) {
	cards := recommend.Parse(h.Recommendations)
	if len(cards) == 0 {
		fmt.Fprint(w, renderMarkdown(h.Recommendations, width))
		return
	}

	fmt.Fprintln(w, bold("Your recommended cards"))
	fmt.Fprintln(w)
	if color.NoColor {
		fmt.Fprint(w, recommend.Render(cards))
		return
	}
	for i, c := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", cyan(fmt.Sprintf("#%d", c.Rank)), bold(c.Name))
		for _, d := range c.Details {
			fmt.Fprintf(w, "  %s %s\n", gray(d.Key+":"), d.Value)
		}
		if c.Reasoning != "" {
			fmt.Fprintf(w, "  %s %s\n", yellow("Why this card?"), c.Reasoning)
		}
	}
}

func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

func printStatus(w io.Writer, st *api.StatusResponse) {
	fmt.Fprintf(w, "%s %s\n", bold("Session"), st.SessionID)

	current := "none (complete)"
	if st.CurrentQuestion != nil {
		current = *st.CurrentQuestion
	}
	fmt.Fprintf(w, "  %s %s\n", gray("current question:"), current)

	for _, k := range sortedKeys(st.Status) {
		if k == "user_profile" {
			continue
		}
		fmt.Fprintf(w, "  %s %v\n", gray(k+":"), st.Status[k])
	}

	if profile, ok := st.Status["user_profile"].(map[string]any); ok && len(profile) > 0 {
		fmt.Fprintln(w, "  "+gray("profile:"))
		for _, k := range sortedKeys(profile) {
			fmt.Fprintf(w, "    %s %v\n", k+":", profile[k])
		}
	}

	fmt.Fprintf(w, "  %s %d\n", gray("turns:"), len(st.ConversationHistory))
	if n := len(st.ConversationHistory); n > 0 {
		last := st.ConversationHistory[n-1]
		content, _ := last["content"].(string)
		fmt.Fprintf(w, "  %s %s\n", gray("last:"), strings.TrimSpace(content))
	}
}
