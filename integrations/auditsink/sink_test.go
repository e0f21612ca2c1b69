package auditsink

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"rewardledger/core/events"
	"rewardledger/core/state"
	"rewardledger/crypto"
	"rewardledger/storage"
)

func newTestSink(t *testing.T) *Sink {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(dsn)
	require.NoError(t, err)
	sink, err := New(db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func TestSinkStoresCommittedEvents(t *testing.T) {
	sink := newTestSink(t)
	store := state.NewStore(storage.NewMemDB())
	store.SetEmitter(sink)

	user := [20]byte{0x0A}
	require.NoError(t, store.Update(func(tx *state.Tx) error {
		if err := tx.AppendEvent(events.RewardsPointsAccrued{Epoch: 16, User: user, Amount: 100}.Event()); err != nil {
			return err
		}
		return tx.AppendEvent(events.RewardsClaimed{Epoch: 16, User: user, Amount: 20, Points: 100, Route: "prelaunch"}.Event())
	}))
	require.NoError(t, store.Update(func(tx *state.Tx) error {
		return tx.AppendEvent(events.RewardsScheduleUpdated{Epoch: 17, Amount: 5}.Event())
	}))

	ctx := context.Background()
	all, err := sink.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(1), all[0].Sequence)
	require.Equal(t, crypto.Format(user), all[0].Subject)

	claims, err := sink.List(ctx, Filter{Type: events.TypeRewardsClaimed})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	attrs, err := claims[0].Decoded()
	require.NoError(t, err)
	require.Equal(t, "prelaunch", attrs["route"])

	epoch17, err := sink.List(ctx, Filter{Epoch: 17})
	require.NoError(t, err)
	require.Len(t, epoch17, 1)

	after, err := sink.List(ctx, Filter{After: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, uint64(2), after[0].Sequence)
}

func TestSinkIgnoresReplays(t *testing.T) {
	sink := newTestSink(t)
	evt := events.RewardsClaimed{Epoch: 16, User: [20]byte{1}, Amount: 1, Points: 1, Route: "escrow"}.Event()
	evt.Sequence = 42

	sink.Emit(events.Record{Payload: evt})
	sink.Emit(events.Record{Payload: evt})
	sink.Emit(events.RewardsClaimed{})

	rows, err := sink.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(16), rows[0].Epoch)

	last, err := sink.LastSequence(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(42), last)
}

func TestLastSequenceEmpty(t *testing.T) {
	last, err := newTestSink(t).LastSequence(context.Background())
	require.NoError(t, err)
	require.Zero(t, last)
}

func TestIsPostgres(t *testing.T) {
	require.True(t, isPostgres("postgres://user@localhost/rewards"))
	require.True(t, isPostgres("host=db user=rewards dbname=audit"))
	require.False(t, isPostgres("file:audit.db"))

	_, err := Open("  ")
	require.Error(t, err)
}

func TestBackfillCatchesUpFromEventLog(t *testing.T) {
	sink := newTestSink(t)
	store := state.NewStore(storage.NewMemDB())
	for i := uint64(1); i <= 3; i++ {
		epoch := i
		require.NoError(t, store.Update(func(tx *state.Tx) error {
			return tx.AppendEvent(events.RewardsScheduleUpdated{Epoch: epoch, Amount: epoch * 10}.Event())
		}))
	}

	ctx := context.Background()
	var written int
	require.NoError(t, store.View(func(m *state.Manager) error {
		var err error
		written, err = sink.Backfill(ctx, m)
		return err
	}))
	require.Equal(t, 3, written)

	require.NoError(t, store.View(func(m *state.Manager) error {
		var err error
		written, err = sink.Backfill(ctx, m)
		return err
	}))
	require.Zero(t, written)

	last, err := sink.LastSequence(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(3), last)
}
