package blocklist_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rewardledger/core/state"
	"rewardledger/native/blocklist"
	"rewardledger/storage"
)

func TestGateBlocksListedAddresses(t *testing.T) {
	manager := state.NewManager(storage.NewMemDB())
	admin := [20]byte{0xAD}
	user := [20]byte{0x01}
	gate := blocklist.NewGate(admin)

	require.NoError(t, gate.CheckNotBlocked(manager, user))

	require.ErrorIs(t, gate.SetBlocked(manager, user, user, true), blocklist.ErrUnauthorized)
	require.NoError(t, gate.SetBlocked(manager, admin, user, true))
	require.ErrorIs(t, gate.CheckNotBlocked(manager, user), blocklist.ErrBlocked)

	require.NoError(t, gate.SetBlocked(manager, admin, user, false))
	require.NoError(t, gate.CheckNotBlocked(manager, user))

	head, err := manager.EventLogHead()
	require.NoError(t, err)
	require.Equal(t, uint64(2), head)
}

func TestGateSkipsNoopUpdates(t *testing.T) {
	manager := state.NewManager(storage.NewMemDB())
	admin := [20]byte{0xAD}
	gate := blocklist.NewGate(admin)

	require.NoError(t, gate.SetBlocked(manager, admin, [20]byte{2}, false))
	head, err := manager.EventLogHead()
	require.NoError(t, err)
	require.Zero(t, head)
}
