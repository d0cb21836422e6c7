package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `Based on your profile, here are my top picks:

1. **Chase Sapphire Preferred**
- **Annual Fee:** $95
- **Rewards Rate:** 3x on dining, 2x on travel
- **Intro Offer:** 60,000 points after $4,000 spend
**Reasoning** You travel often and spend heavily on dining.
The points transfer to airline partners.

2. **Citi Double Cash**
**Annual Fee:** $0
**Rewards Rate:** 2% on everything
**Reasoning:** Simple flat-rate cash back.

3. **Discover it Secured**
- **Credit Needed:** None
`

func TestParseSingleCard(t *testing.T) {
	cards := Parse("1. **Card A**\n- **APR:** 0%\n**Reasoning** Good fit\nmore text")

	require.Len(t, cards, 1)
	assert.Equal(t, Card{
		Rank:      1,
		Name:      "Card A",
		Details:   []Detail{{Key: "APR", Value: "0%"}},
		Reasoning: "Good fit more text",
	}, cards[0])
}

func TestParseFullResponse(t *testing.T) {
	cards := Parse(sampleResponse)
	require.Len(t, cards, 3)

	assert.Equal(t, "Chase Sapphire Preferred", cards[0].Name)
	assert.Equal(t, []Detail{
		{Key: "Annual Fee", Value: "$95"},
		{Key: "Rewards Rate", Value: "3x on dining, 2x on travel"},
		{Key: "Intro Offer", Value: "60,000 points after $4,000 spend"},
	}, cards[0].Details)
	assert.Equal(t, "You travel often and spend heavily on dining. The points transfer to airline partners.", cards[0].Reasoning)

	// Bold key/value lines without a bullet are accepted too.
	assert.Equal(t, "Citi Double Cash", cards[1].Name)
	assert.Equal(t, []Detail{
		{Key: "Annual Fee", Value: "$0"},
		{Key: "Rewards Rate", Value: "2% on everything"},
	}, cards[1].Details)
	assert.Equal(t, "Simple flat-rate cash back.", cards[1].Reasoning)

	assert.Equal(t, "Discover it Secured", cards[2].Name)
	assert.Equal(t, 3, cards[2].Rank)
	assert.Empty(t, cards[2].Reasoning)
}

func TestParseIgnoresNumberedBoldMidLine(t *testing.T) {
	cards := Parse("1. **Card A**\n- **Perks:** Ranked no. 2. **Best** for travel\n**Reasoning** Good fit")

	require.Len(t, cards, 1)
	assert.Equal(t, Card{
		Rank:      1,
		Name:      "Card A",
		Details:   []Detail{{Key: "Perks", Value: "Ranked no. 2. **Best** for travel"}},
		Reasoning: "Good fit",
	}, cards[0])
}

func TestParseIndentedHeading(t *testing.T) {
	cards := Parse("Intro\n  1. **Card A**\n  **APR:** 0%\n\t2. **Card B**\n")

	require.Len(t, cards, 2)
	assert.Equal(t, "Card A", cards[0].Name)
	assert.Equal(t, []Detail{{Key: "APR", Value: "0%"}}, cards[0].Details)
	assert.Equal(t, "Card B", cards[1].Name)
	assert.Equal(t, 2, cards[1].Rank)
}

func TestParseIsIdempotent(t *testing.T) {
	assert.Equal(t, Parse(sampleResponse), Parse(sampleResponse))
}

func TestParseWithoutHeadings(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t"},
		{"plain prose", "Sorry, I could not find a matching card."},
		{"bold without number", "**Card A**\n- **APR:** 0%"},
		{"number without bold", "1. Card A\n2. Card B"},
		{"number without space", "1.**Card A**"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Parse(tt.text))
		})
	}
}

func TestParseDropsBlocksWithoutName(t *testing.T) {
	cards := Parse("1. **   **\n- **APR:** 0%\n2. **Card B**")
	require.Len(t, cards, 1)
	assert.Equal(t, "Card B", cards[0].Name)
	assert.Equal(t, 1, cards[0].Rank)
}

func TestParseIgnoresUnrecognisedLines(t *testing.T) {
	text := "1. **Card A**\nGreat for beginners\n- **Annual Fee:**    \n- **APR:** 19.99%\n* loose bullet"
	cards := Parse(text)
	require.Len(t, cards, 1)
	assert.Equal(t, []Detail{{Key: "APR", Value: "19.99%"}}, cards[0].Details)
}

func TestParseToleratesColonOutsideBold(t *testing.T) {
	cards := Parse("1. **Card A**\n- **Annual Fee**: $0")
	require.Len(t, cards, 1)
	assert.Equal(t, []Detail{{Key: "Annual Fee", Value: "$0"}}, cards[0].Details)
}

func TestParseDetailsAfterReasoningBelongToReasoning(t *testing.T) {
	cards := Parse("1. **Card A**\n**Reasoning**\n- **APR:** 0%")
	require.Len(t, cards, 1)
	assert.Empty(t, cards[0].Details)
	assert.Equal(t, "- **APR:** 0%", cards[0].Reasoning)
}

func TestEachStopsEarly(t *testing.T) {
	var names []string
	for card := range Each(sampleResponse) {
		names = append(names, card.Name)
		if len(names) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"Chase Sapphire Preferred", "Citi Double Cash"}, names)
}

func TestRender(t *testing.T) {
	out := Render(Parse("1. **Card A**\n- **APR:** 0%\n**Reasoning** Good fit"))
	assert.Equal(t, "#1 Card A\n  APR: 0%\n  Why this card? Good fit\n", out)
	assert.Empty(t, Render(nil))
}
