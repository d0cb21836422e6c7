package mockbackend

import (
	"fmt"
	"sort"
	"strings"
)

type card struct {
	Name          string
	AnnualFee     string
	Rewards       string
	IntroAPR      string
	CreditNeeded  string
	Goals         []string
	Brands        []string
	StudentFriend bool
	Pitch         string
}

var catalog = []card{
	{
		Name:         "Chase Sapphire Preferred",
		AnnualFee:    "$95",
		Rewards:      "3x on dining, 2x on travel",
		IntroAPR:     "None",
		CreditNeeded: "Good to Excellent",
		Goals:        []string{"travel"},
		Brands:       []string{"Airlines or hotel loyalty programs"},
		Pitch:        "Points transfer to airline and hotel partners, which suits frequent travelers.",
	},
	{
		Name:         "Citi Double Cash",
		AnnualFee:    "$0",
		Rewards:      "2% on everything",
		IntroAPR:     "0% on balance transfers for 18 months",
		CreditNeeded: "Good",
		Goals:        []string{"cash back"},
		Pitch:        "Simple flat-rate cash back with no categories to track.",
	},
	{
		Name:         "Wells Fargo Reflect",
		AnnualFee:    "$0",
		Rewards:      "None",
		IntroAPR:     "0% for 21 months on purchases",
		CreditNeeded: "Good",
		Goals:        []string{"0% intro apr"},
		Pitch:        "One of the longest intro APR periods for carrying a balance.",
	},
	{
		Name:          "Discover it Secured",
		AnnualFee:     "$0",
		Rewards:       "2% at gas and restaurants, 1% elsewhere",
		IntroAPR:      "None",
		CreditNeeded:  "None",
		Goals:         []string{"building"},
		StudentFriend: true,
		Pitch:         "Reports to all three bureaus and reviews for an upgrade after seven months.",
	},
	{
		Name:         "Amazon Prime Visa",
		AnnualFee:    "$0 with Prime",
		Rewards:      "5% at Amazon and Whole Foods",
		IntroAPR:     "None",
		CreditNeeded: "Good",
		Goals:        []string{"brand"},
		Brands:       []string{"Amazon"},
		Pitch:        "Strong return on Amazon spending for Prime members.",
	},
	{
		Name:         "Costco Anywhere Visa",
		AnnualFee:    "$0 with membership",
		Rewards:      "4% on gas, 3% dining and travel, 2% at Costco",
		IntroAPR:     "None",
		CreditNeeded: "Good to Excellent",
		Goals:        []string{"brand", "cash back"},
		Brands:       []string{"Costco"},
		Pitch:        "Rewards warehouse and gas spending for Costco members.",
	},
	{
		Name:         "Apple Card",
		AnnualFee:    "$0",
		Rewards:      "3% on Apple, 2% with Apple Pay",
		IntroAPR:     "None",
		CreditNeeded: "Fair to Good",
		Goals:        []string{"brand"},
		Brands:       []string{"Apple or Apple Pay"},
		Pitch:        "Daily cash back on Apple Pay purchases with no fees.",
	},
}

// recommend ranks the catalog against the profile and keeps the top three.
func recommend(profile map[string]string) []card {
	goal := strings.ToLower(profile["primary_goal"])
	brands := profile["brand_preferences"]
	student := strings.Contains(profile["credit_situation"], "student") ||
		strings.Contains(profile["credit_situation"], "build")

	type scored struct {
		card  card
		score int
	}
	ranked := make([]scored, 0, len(catalog))
	for i, c := range catalog {
		score := len(catalog) - i
		for _, g := range c.Goals {
			if strings.Contains(goal, g) {
				score += 20
			}
		}
		for _, b := range c.Brands {
			if strings.Contains(brands, b) {
				score += 10
			}
		}
		if student && c.StudentFriend {
			score += 30
		}
		ranked = append(ranked, scored{card: c, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]card, 0, 3)
	for _, r := range ranked[:3] {
		out = append(out, r.card)
	}
	return out
}

// renderCards writes cards in the markdown layout the real backend uses.
func renderCards(cards []card) string {
	var b strings.Builder
	b.WriteString("Based on your profile, here are my top recommendations:\n\n")
	for i, c := range cards {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, c.Name)
		fmt.Fprintf(&b, "- **Annual Fee:** %s\n", c.AnnualFee)
		fmt.Fprintf(&b, "- **Rewards:** %s\n", c.Rewards)
		fmt.Fprintf(&b, "- **Intro APR:** %s\n", c.IntroAPR)
		fmt.Fprintf(&b, "- **Credit Needed:** %s\n", c.CreditNeeded)
		fmt.Fprintf(&b, "**Reasoning:** %s\n\n", c.Pitch)
	}
	return b.String()
}

func structured(cards []card) []map[string]any {
	out := make([]map[string]any, 0, len(cards))
	for i, c := range cards {
		out = append(out, map[string]any{
			"rank":          i + 1,
			"name":          c.Name,
			"annual_fee":    c.AnnualFee,
			"rewards":       c.Rewards,
			"intro_apr":     c.IntroAPR,
			"credit_needed": c.CreditNeeded,
			"reasoning":     c.Pitch,
		})
	}
	return out
}
