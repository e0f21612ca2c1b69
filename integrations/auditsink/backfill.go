package auditsink

import (
	"context"

	"rewardledger/core/events"
	"rewardledger/core/types"
)

const backfillPage = 500

// EventSource pages through the persisted ledger event log.
type EventSource interface {
	EventLogRange(from uint64, limit int) ([]*types.Event, error)
}

// Backfill stores every event in src newer than the last audited sequence and
// returns how many were written.
func (s *Sink) Backfill(ctx context.Context, src EventSource) (int, error) {
	last, err := s.LastSequence(ctx)
	if err != nil {
		return 0, err
	}
	written := 0
	for {
		page, err := src.EventLogRange(last+1, backfillPage)
		if err != nil {
			return written, err
		}
		if len(page) == 0 {
			return written, nil
		}
		for _, evt := range page {
			if err := s.Store(ctx, events.Record{Payload: evt}); err != nil {
				return written, err
			}
			written++
			last = evt.Sequence
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
	}
}
