package questionnaire

import (
	"cardmatch/internal/storage"
	"errors"
	"strings"
)

// FailureMessage is shown when the final exchange fails.
const FailureMessage = "Sorry, there was an error getting your recommendations. Please try again."

var (
	ErrNoSelection   = errors.New("questionnaire: no option selected")
	ErrUnknownOption = errors.New("questionnaire: option is not offered by this question")
	ErrNotAsking     = errors.New("questionnaire: not accepting answers")
	ErrClosed        = errors.New("questionnaire: controller closed")
)

// State is the controller's position in the flow.
type State int

const (
	StateAsking State = iota
	StateFinishing
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAsking:
		return "asking"
	case StateFinishing:
		return "finishing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation log. Field names the question the
// turn belongs to, so the profile never depends on turn positions.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Field   string `json:"field"`
}

// Answer is the selection made for one question.
type Answer struct {
	Field  string
	Values []string
}

// Text is the answer as sent to the backend. Multiple selections are
// joined with ", ".
func (a Answer) Text() string {
	return strings.Join(a.Values, ", ")
}

// Profile maps every question ID to its answer text.
type Profile struct {
	SessionID string
	Fields    map[string]string
}

func newProfile(fields []string) Profile {
	p := Profile{Fields: make(map[string]string, len(fields))}
	for _, f := range fields {
		p.Fields[f] = ""
	}
	return p
}

func (p Profile) clone() Profile {
	out := Profile{SessionID: p.SessionID, Fields: make(map[string]string, len(p.Fields))}
	for k, v := range p.Fields {
		out.Fields[k] = v
	}
	return out
}

// Payload is the flat request body for profile submission.
func (p Profile) Payload() map[string]string {
	out := make(map[string]string, len(p.Fields)+1)
	for k, v := range p.Fields {
		out[k] = v
	}
	out["session_id"] = p.SessionID
	return out
}

// Completion is delivered once when the final exchange ends.
type Completion struct {
	Handoff storage.Handoff
	Err     error
}

// Pending is the handle for the final answer's exchange. Done yields
// exactly one Completion.
type Pending struct {
	done chan Completion
}

func (p *Pending) Done() <-chan Completion {
	return p.done
}

func (p *Pending) complete(c Completion) {
	p.done <- c
}
