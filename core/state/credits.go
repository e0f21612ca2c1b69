package state

import "fmt"

func creditsBalanceKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf(creditsBalanceKeyFormat, addr[:]))
}

// CreditsSupply returns the total outstanding secondary credits.
func (m *Manager) CreditsSupply() (uint64, error) {
	return m.loadUint64(creditsSupplyKey)
}

// SetCreditsSupply stores the total outstanding secondary credits.
func (m *Manager) SetCreditsSupply(supply uint64) error {
	return m.writeUint64(creditsSupplyKey, supply)
}

// CreditsBalance returns the secondary credit balance of addr.
func (m *Manager) CreditsBalance(addr [20]byte) (uint64, error) {
	return m.loadUint64(creditsBalanceKey(addr))
}

// SetCreditsBalance stores the secondary credit balance of addr.
func (m *Manager) SetCreditsBalance(addr [20]byte, balance uint64) error {
	return m.writeUint64(creditsBalanceKey(addr), balance)
}
