package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SaveHandoff persists the recommendation text and the conversation
// summary. A nil summary removes any stored one.
func SaveHandoff(ctx context.Context, s Store, h Handoff) error {
	if err := s.Set(ctx, KeyRecommendations, h.Recommendations); err != nil {
		return err
	}
	if h.Summary == nil {
		return s.Delete(ctx, KeyConversationSummary)
	}

	data, err := json.Marshal(h.Summary)
	if err != nil {
		return fmt.Errorf("encode conversation summary: %w", err)
	}
	return s.Set(ctx, KeyConversationSummary, string(data))
}

// LoadHandoff reads the persisted handoff. Missing keys give zero values.
// A summary that does not decode is dropped.
func LoadHandoff(ctx context.Context, s Store) (Handoff, error) {
	var h Handoff

	text, err := s.Get(ctx, KeyRecommendations)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return h, err
	}
	h.Recommendations = text

	raw, err := s.Get(ctx, KeyConversationSummary)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return h, err
	default:
		var summary map[string]any
		if json.Unmarshal([]byte(raw), &summary) == nil {
			h.Summary = summary
		}
	}

	return h, nil
}

// ClearHandoff removes both handoff keys.
func ClearHandoff(ctx context.Context, s Store) error {
	return s.Delete(ctx, KeyRecommendations, KeyConversationSummary)
}

// Valid reports whether the handoff carries non-blank recommendation text.
func (h Handoff) Valid() bool {
	return strings.TrimSpace(h.Recommendations) != ""
}
