package tui

import (
	"cardmatch/internal/auth"
	"cardmatch/internal/config"
	"strings"
)

func landingView(cfg *config.Config, user *auth.User, notice string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(cfg.QuestionnaireConfig.Title))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(cfg.QuestionnaireConfig.Tagline))
	b.WriteString("\n\n")
	b.WriteString(headlineStyle.Render(cfg.Landing.Headline))
	b.WriteString("\n")
	for _, p := range cfg.Landing.PainPoints {
		b.WriteString("• " + p + "\n")
	}
	b.WriteString("\n")
	b.WriteString(cfg.Landing.Pitch)
	b.WriteString("\n\n")

	if user != nil {
		b.WriteString(mutedStyle.Render("Signed in as " + user.DisplayName()))
	} else {
		b.WriteString(mutedStyle.Render("Not signed in"))
	}
	b.WriteString("\n")
	if notice != "" {
		b.WriteString(errorStyle.Render(notice))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: find my card • r: last results • l: log in • o: log out • q: quit"))
	return b.String()
}
