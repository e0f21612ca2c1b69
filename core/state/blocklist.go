package state

import "fmt"

func blocklistKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf(blocklistKeyFormat, addr[:]))
}

// IsBlocked reports whether addr is on the block list.
func (m *Manager) IsBlocked(addr [20]byte) (bool, error) {
	var blocked bool
	if _, err := m.KVGet(blocklistKey(addr), &blocked); err != nil {
		return false, err
	}
	return blocked, nil
}

// SetBlocked adds or removes addr from the block list.
func (m *Manager) SetBlocked(addr [20]byte, blocked bool) error {
	if !blocked {
		return m.KVDelete(blocklistKey(addr))
	}
	return m.KVPut(blocklistKey(addr), true)
}
