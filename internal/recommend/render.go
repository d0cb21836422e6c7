package recommend

import (
	"fmt"
	"strings"
)

// Render formats cards as plain text for non-interactive output.
func Render(cards []Card) string {
	var b strings.Builder
	for i, card := range cards {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "#%d %s\n", card.Rank, card.Name)
		for _, d := range card.Details {
			fmt.Fprintf(&b, "  %s: %s\n", d.Key, d.Value)
		}
		if card.Reasoning != "" {
			fmt.Fprintf(&b, "  Why this card? %s\n", card.Reasoning)
		}
	}
	return b.String()
}
