// Package recommend turns the backend's free-text recommendation answer
// into card summaries.
//
// The accepted shape is:
//
//	<n>. **Card Name**
//	- **Attribute:** value
//	**Attribute:** value
//	**Reasoning** free text
//	more free text
//
// Blocks start at a numbered, bolded heading. Anything the grammar does not
// recognise is skipped, and callers fall back to showing the raw text when
// no card comes out.
package recommend

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// Card is one parsed recommendation.
type Card struct {
	Rank      int
	Name      string
	Details   []Detail
	Reasoning string
}

// Detail is one attribute line of a card.
type Detail struct {
	Key   string
	Value string
}

var (
	headingRe   = regexp.MustCompile(`(?m)^[ \t]*\d+\.\s+\*\*`)
	nameRe      = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reasoningRe = regexp.MustCompile(`^(?:[-*•]\s*)?\*\*Reasoning:?\*\*:?\s*(.*)$`)
	detailRe    = regexp.MustCompile(`^(?:[-•]\s*)?\*\*([^*:]+?)(?::\*\*|\*\*:)\s*(.+)$`)
)

// lineKind classifies a line inside a card block.
type lineKind int

const (
	kindText lineKind = iota
	kindReasoning
	kindDetail
)

// Parse returns every card in text. It never fails; text without a
// numbered bold heading yields an empty list.
func Parse(text string) []Card {
	return slices.Collect(Each(text))
}

// Each yields cards one block at a time. Blocks are parsed as they are
// pulled, so stopping early skips the rest of the text.
func Each(text string) iter.Seq[Card] {
	return func(yield func(Card) bool) {
		rank := 0
		for _, block := range splitBlocks(text) {
			card, ok := parseBlock(block)
			if !ok {
				continue
			}
			rank++
			card.Rank = rank
			if !yield(card) {
				return
			}
		}
	}
}

// splitBlocks cuts text at every heading. A heading must open its line.
// Text before the first heading is
// preamble and belongs to no card.
func splitBlocks(text string) []string {
	starts := headingRe.FindAllStringIndex(text, -1)
	blocks := make([]string, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		if block := text[loc[0]:end]; strings.TrimSpace(block) != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func parseBlock(block string) (Card, bool) {
	loc := nameRe.FindStringSubmatchIndex(block)
	if loc == nil {
		return Card{}, false
	}
	name := strings.TrimSpace(block[loc[2]:loc[3]])
	if name == "" {
		return Card{}, false
	}

	// The heading runs to the end of the line holding the name.
	body := ""
	if nl := strings.IndexByte(block[loc[1]:], '\n'); nl >= 0 {
		body = block[loc[1]+nl+1:]
	}

	card := Card{Name: name}
	var reasoning []string
	inReasoning := false

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if inReasoning {
			reasoning = append(reasoning, line)
			continue
		}

		kind, key, value := classify(line)
		switch kind {
		case kindReasoning:
			inReasoning = true
			if value != "" {
				reasoning = append(reasoning, value)
			}
		case kindDetail:
			card.Details = append(card.Details, Detail{Key: key, Value: value})
		}
	}

	card.Reasoning = strings.TrimSpace(strings.Join(reasoning, " "))
	return card, true
}

func classify(line string) (lineKind, string, string) {
	if m := reasoningRe.FindStringSubmatch(line); m != nil {
		return kindReasoning, "", strings.TrimSpace(m[1])
	}
	if m := detailRe.FindStringSubmatch(line); m != nil {
		key, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if key != "" && value != "" {
			return kindDetail, key, value
		}
	}
	return kindText, "", ""
}
