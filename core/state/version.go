package state

import (
	"errors"
	"fmt"
	"math"
)

// StateVersion identifies the on-disk key layout of the ledger. Increment it
// whenever stored records change shape.
const StateVersion uint32 = 1

var (
	stateVersionKey = []byte("state/version")
	// ErrStateVersionMismatch indicates the stored schema version does not
	// match the version supported by the current binary.
	ErrStateVersionMismatch = errors.New("state: schema version mismatch")
)

// SetStateVersion records the schema version.
func (m *Manager) SetStateVersion(version uint32) error {
	return m.KVPut(stateVersionKey, uint64(version))
}

// StateVersion returns the stored schema version and whether one was present.
func (m *Manager) StateVersion() (uint32, bool, error) {
	var stored uint64
	ok, err := m.KVGet(stateVersionKey, &stored)
	if err != nil || !ok {
		return 0, false, err
	}
	if stored > uint64(math.MaxUint32) {
		return 0, false, fmt.Errorf("state: schema version overflow: %d", stored)
	}
	return uint32(stored), true, nil
}

// EnsureStateVersion stamps an empty store with StateVersion and rejects a
// store written by a different layout. allowMigrate tolerates mismatches so
// operators can migrate by hand.
func (s *Store) EnsureStateVersion(allowMigrate bool) error {
	return s.Update(func(tx *Tx) error {
		version, ok, err := tx.StateVersion()
		if err != nil {
			return err
		}
		if !ok {
			return tx.SetStateVersion(StateVersion)
		}
		if version == StateVersion || allowMigrate {
			return nil
		}
		return fmt.Errorf("%w: on-disk=%d expected=%d", ErrStateVersionMismatch, version, StateVersion)
	})
}
