package storage

import (
	"context"
	"errors"
	"time"
)

// Persisted keys.
const (
	KeyRecommendations     = "creditCardRecommendations"
	KeyConversationSummary = "conversationSummary"
	KeyAuthSession         = "authSession"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a small persisted key/value store. It carries the
// recommendation handoff between the questionnaire and results phases and
// the identity session between runs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}

// Handoff is the payload passed from the questionnaire to the results screen.
type Handoff struct {
	Recommendations string         `json:"recommendations"`
	Summary         map[string]any `json:"conversation_summary,omitempty"`
}

// entry is the on-disk form of a value.
type entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
