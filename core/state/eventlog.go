package state

import (
	"fmt"
	"sort"

	"rewardledger/core/types"
)

const defaultEventPageLimit = 200

type storedEvent struct {
	Sequence uint64
	Type     string
	Keys     []string
	Values   []string
}

func eventLogEntryKey(seq uint64) []byte {
	return []byte(fmt.Sprintf(eventLogEntryKeyFormat, seq))
}

func newStoredEvent(seq uint64, evt *types.Event) storedEvent {
	keys := make([]string, 0, len(evt.Attributes))
	for k := range evt.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = evt.Attributes[k]
	}
	return storedEvent{Sequence: seq, Type: evt.Type, Keys: keys, Values: values}
}

func (s storedEvent) toEvent() (*types.Event, error) {
	if len(s.Keys) != len(s.Values) {
		return nil, fmt.Errorf("eventlog: corrupt entry %d", s.Sequence)
	}
	attrs := make(map[string]string, len(s.Keys))
	for i, k := range s.Keys {
		attrs[k] = s.Values[i]
	}
	return &types.Event{Sequence: s.Sequence, Type: s.Type, Attributes: attrs}, nil
}

// appendEventLog writes evt at the next sequence number (starting at 1).
func (m *Manager) appendEventLog(evt *types.Event) (uint64, error) {
	head, err := m.loadUint64(eventLogHeadKey)
	if err != nil {
		return 0, err
	}
	seq := head + 1
	if err := m.KVPut(eventLogEntryKey(seq), newStoredEvent(seq, evt)); err != nil {
		return 0, err
	}
	if err := m.writeUint64(eventLogHeadKey, seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// EventLogHead returns the sequence number of the most recent event.
func (m *Manager) EventLogHead() (uint64, error) {
	return m.loadUint64(eventLogHeadKey)
}

// EventLogRange returns up to limit events starting at sequence from.
func (m *Manager) EventLogRange(from uint64, limit int) ([]*types.Event, error) {
	if from == 0 {
		from = 1
	}
	if limit <= 0 {
		limit = defaultEventPageLimit
	}
	head, err := m.EventLogHead()
	if err != nil {
		return nil, err
	}
	out := make([]*types.Event, 0, limit)
	for seq := from; seq <= head && len(out) < limit; seq++ {
		var stored storedEvent
		ok, err := m.KVGet(eventLogEntryKey(seq), &stored)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		evt, err := stored.toEvent()
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}
