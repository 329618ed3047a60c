package models

import (
	"time"
)

// EventType identifies the role of a conversation log record.
type EventType string

const (
	EventUser      EventType = "user"
	EventAssistant EventType = "assistant"
)

// UnknownModel is reported when none of the assistant messages in a turn
// declared a model identifier.
const UnknownModel = "unknown"

// Usage holds the token counts reported by an assistant message.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// MessageEvent is one parsed log line of interest. Records whose type is
// neither user nor assistant are dropped during parsing and never reach
// this struct.
type MessageEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Usage     *Usage    `json:"usage,omitempty"`
	SessionID string    `json:"session_id"`
	UUID      string    `json:"uuid"`
	Model     string    `json:"model,omitempty"`
}

// HasUsage reports whether the event carries token usage data.
func (e *MessageEvent) HasUsage() bool {
	return e.Usage != nil
}

// MetricPoint is the throughput measurement emitted when a conversation
// turn closes. Rates are tokens per second over the turn's duration.
type MetricPoint struct {
	SessionID       string    `json:"session_id"`
	Timestamp       time.Time `json:"timestamp"` // user message that opened the turn
	TPS             float64   `json:"tps"`
	ITPS            float64   `json:"itps"`
	OTPS            float64   `json:"otps"`
	TotalTokens     int       `json:"total_tokens"`
	InputTokens     int       `json:"input_tokens"`
	OutputTokens    int       `json:"output_tokens"`
	DurationSeconds float64   `json:"duration_seconds"` // always > 0
	Model           string    `json:"model"`            // first model seen in the turn
	Models          []string  `json:"models"`           // distinct models, first-seen order
}

// SessionSummary describes one input file after all of its metric points
// are known. It is built once and never mutated.
type SessionSummary struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	TurnCount    int       `json:"turn_count"`
	TotalTokens  int       `json:"total_tokens"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	AverageTPS   float64   `json:"average_tps"`
	AverageITPS  float64   `json:"average_itps"`
	AverageOTPS  float64   `json:"average_otps"`
	Timestamp    time.Time `json:"timestamp"` // first event's timestamp
	Models       []string  `json:"models"`
}

// ModelSet is an insertion-ordered set of model identifiers. First-seen
// order is part of the contract: the first element is the turn's reported
// model, so iteration order must not depend on map ordering.
type ModelSet struct {
	order []string
	seen  map[string]struct{}
}

// NewModelSet returns an empty ordered model set.
func NewModelSet() *ModelSet {
	return &ModelSet{seen: make(map[string]struct{})}
}

// Add inserts a model identifier, ignoring empty strings and duplicates.
func (s *ModelSet) Add(model string) {
	if model == "" {
		return
	}
	if _, ok := s.seen[model]; ok {
		return
	}
	s.seen[model] = struct{}{}
	s.order = append(s.order, model)
}

// Len returns the number of distinct models.
func (s *ModelSet) Len() int {
	return len(s.order)
}

// First returns the first model added, or UnknownModel if the set is empty.
func (s *ModelSet) First() string {
	if len(s.order) == 0 {
		return UnknownModel
	}
	return s.order[0]
}

// Values returns the models in insertion order. The returned slice is a
// copy; mutating it does not affect the set.
func (s *ModelSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
