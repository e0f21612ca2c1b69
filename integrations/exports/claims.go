package exports

import (
	"fmt"
	"strconv"

	"rewardledger/core/events"
	"rewardledger/core/types"
	"rewardledger/crypto"
)

// ClaimRecord is one settled claim read back from the event log.
type ClaimRecord struct {
	Sequence uint64
	Epoch    uint64
	Address  [20]byte
	Amount   uint64
	Points   uint64
	Route    string
}

// ClaimsFromEvents extracts claim records from committed events. Other event
// types are skipped. When epoch is non-zero only that epoch is kept.
func ClaimsFromEvents(evts []*types.Event, epoch uint64) ([]ClaimRecord, error) {
	out := make([]ClaimRecord, 0, len(evts))
	for _, evt := range evts {
		if evt == nil || evt.Type != events.TypeRewardsClaimed {
			continue
		}
		record, err := claimFromEvent(evt)
		if err != nil {
			return nil, fmt.Errorf("exports: event %d: %w", evt.Sequence, err)
		}
		if epoch != 0 && record.Epoch != epoch {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func claimFromEvent(evt *types.Event) (ClaimRecord, error) {
	record := ClaimRecord{Sequence: evt.Sequence, Route: evt.Attributes["route"]}
	var err error
	if record.Epoch, err = parseUint(evt.Attributes, "epoch"); err != nil {
		return record, err
	}
	if record.Amount, err = parseUint(evt.Attributes, "amount"); err != nil {
		return record, err
	}
	if record.Points, err = parseUint(evt.Attributes, "points"); err != nil {
		return record, err
	}
	if record.Address, err = crypto.ParseAddress(evt.Attributes["user"]); err != nil {
		return record, fmt.Errorf("user: %w", err)
	}
	return record, nil
}

func parseUint(attrs map[string]string, key string) (uint64, error) {
	value, err := strconv.ParseUint(attrs[key], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
