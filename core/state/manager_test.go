package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rewardledger/core/types"
	"rewardledger/storage"
)

func newTestManager(t *testing.T) (*Manager, storage.Database) {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	return NewManager(db), db
}

func TestMissingKeysReadAsZero(t *testing.T) {
	manager, _ := newTestManager(t)
	var user [20]byte
	user[19] = 1

	exists, err := manager.RewardsEpochExists(7)
	require.NoError(t, err)
	require.False(t, exists)

	supply, err := manager.RewardsEpochSupply(7)
	require.NoError(t, err)
	require.Zero(t, supply)

	balance, err := manager.RewardsUserBalance(7, user)
	require.NoError(t, err)
	require.Zero(t, balance)

	reward, err := manager.RewardsSchedule(7)
	require.NoError(t, err)
	require.Zero(t, reward)

	initialized, err := manager.RewardsInitialized()
	require.NoError(t, err)
	require.False(t, initialized)
}

func TestZeroSupplyRecordStillExists(t *testing.T) {
	manager, _ := newTestManager(t)
	require.NoError(t, manager.SetRewardsEpochSupply(3, 0))
	exists, err := manager.RewardsEpochExists(3)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestTxCommitIsAtomic(t *testing.T) {
	_, db := newTestManager(t)
	var user [20]byte
	user[0] = 0xAA

	tx := Begin(db)
	require.NoError(t, tx.SetRewardsEpochSupply(1, 50))
	require.NoError(t, tx.SetRewardsUserBalance(1, user, 50))
	require.NoError(t, tx.AppendEvent(&types.Event{Type: "test.accrued", Attributes: map[string]string{"amount": "50"}}))

	// The transaction reads its own writes while the database stays untouched.
	supply, err := tx.RewardsEpochSupply(1)
	require.NoError(t, err)
	require.Equal(t, uint64(50), supply)

	committed := NewManager(db)
	supply, err = committed.RewardsEpochSupply(1)
	require.NoError(t, err)
	require.Zero(t, supply)

	events, err := tx.Commit()
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(1), events[0].Sequence)

	supply, err = committed.RewardsEpochSupply(1)
	require.NoError(t, err)
	require.Equal(t, uint64(50), supply)
	balance, err := committed.RewardsUserBalance(1, user)
	require.NoError(t, err)
	require.Equal(t, uint64(50), balance)

	_, err = tx.Commit()
	require.ErrorIs(t, err, ErrTxClosed)
}

func TestTxDiscardLeavesNoTrace(t *testing.T) {
	_, db := newTestManager(t)
	var user [20]byte
	user[0] = 0xBB

	tx := Begin(db)
	require.NoError(t, tx.SetRewardsUserClaimed(4, user, 9))
	require.NoError(t, tx.AppendEvent(&types.Event{Type: "test.claimed"}))
	tx.Discard()
	tx.Discard()

	committed := NewManager(db)
	claimed, err := committed.RewardsUserClaimed(4, user)
	require.NoError(t, err)
	require.Zero(t, claimed)
	head, err := committed.EventLogHead()
	require.NoError(t, err)
	require.Zero(t, head)

	_, err = tx.RewardsUserClaimed(4, user)
	require.ErrorIs(t, err, ErrTxClosed)
}

func TestTxDeleteShadowsCommittedValue(t *testing.T) {
	manager, db := newTestManager(t)
	var user [20]byte
	user[5] = 1
	require.NoError(t, manager.SetBlocked(user, true))

	tx := Begin(db)
	require.NoError(t, tx.SetBlocked(user, false))
	blocked, err := tx.IsBlocked(user)
	require.NoError(t, err)
	require.False(t, blocked)
	_, err = tx.Commit()
	require.NoError(t, err)

	blocked, err = manager.IsBlocked(user)
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestEventLogRange(t *testing.T) {
	manager, _ := newTestManager(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, manager.AppendEvent(&types.Event{
			Type:       "test.event",
			Attributes: map[string]string{"index": string(rune('a' + i)), "kind": "x"},
		}))
	}

	page, err := manager.EventLogRange(2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, uint64(2), page[0].Sequence)
	require.Equal(t, "b", page[0].Attributes["index"])
	require.Equal(t, "x", page[1].Attributes["kind"])

	all, err := manager.EventLogRange(0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
}
