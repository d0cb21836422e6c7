package api

import "fmt"

// StartResponse is returned by POST /start.
type StartResponse struct {
	SessionID       string `json:"session_id"`
	InitialQuestion string `json:"initial_question"`
	Message         string `json:"message,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Response   string `json:"response"`
	IsComplete bool   `json:"is_complete"`
	SessionID  string `json:"session_id"`
}

// SubmitProfileResponse is returned by POST /submit-profile.
type SubmitProfileResponse struct {
	Response            string           `json:"response"`
	SessionID           string           `json:"session_id"`
	IsComplete          bool             `json:"is_complete"`
	ConversationSummary map[string]any   `json:"conversation_summary,omitempty"`
	StructuredCards     []map[string]any `json:"structured_cards,omitempty"`
}

// StatusResponse is returned by GET /status/{session_id}.
type StatusResponse struct {
	SessionID           string           `json:"session_id"`
	Status              map[string]any   `json:"status"`
	CurrentQuestion     *string          `json:"current_question"`
	ConversationHistory []map[string]any `json:"conversation_history"`
}

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}
