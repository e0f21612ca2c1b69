package types

// Event represents a typed event emitted during state transitions.
type Event struct {
	// Sequence is the position of the event in the persisted event log. It is
	// zero until the event has been appended.
	Sequence   uint64            `json:"sequence,omitempty"`
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
