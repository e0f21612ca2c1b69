package state

import "fmt"

func epochEndKey(epoch uint64) []byte {
	return []byte(fmt.Sprintf(epochEndKeyFormat, epoch))
}

// EpochCurrent returns the persisted current epoch number. Zero means the clock
// has never been written.
func (m *Manager) EpochCurrent() (uint64, error) {
	return m.loadUint64(epochCurrentKey)
}

// SetEpochCurrent stores the current epoch number.
func (m *Manager) SetEpochCurrent(epoch uint64) error {
	return m.writeUint64(epochCurrentKey, epoch)
}

// EpochEndTime returns the recorded end timestamp (unix seconds) of epoch, or
// zero when the epoch has not been closed.
func (m *Manager) EpochEndTime(epoch uint64) (uint64, error) {
	return m.loadUint64(epochEndKey(epoch))
}

// SetEpochEndTime records the end timestamp of epoch.
func (m *Manager) SetEpochEndTime(epoch, endTime uint64) error {
	return m.writeUint64(epochEndKey(epoch), endTime)
}
