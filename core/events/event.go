package events

import "rewardledger/core/types"

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. audit sinks, logs).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// MultiEmitter fans a single event out to every non-nil emitter in order.
type MultiEmitter []Emitter

// Emit implements the Emitter interface.
func (m MultiEmitter) Emit(evt Event) {
	for _, emitter := range m {
		if emitter == nil {
			continue
		}
		emitter.Emit(evt)
	}
}

// Record carries an event that has already been committed to the ledger's
// event log, including its sequence number.
type Record struct {
	Payload *types.Event
}

// EventType implements Event.
func (r Record) EventType() string {
	if r.Payload == nil {
		return ""
	}
	return r.Payload.Type
}

// Event returns the committed payload.
func (r Record) Event() *types.Event {
	return r.Payload
}
