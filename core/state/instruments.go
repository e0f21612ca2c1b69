package state

import (
	"fmt"
	"strings"
)

func instrumentBalanceKey(instrument string, addr [20]byte) []byte {
	return []byte(fmt.Sprintf(instrumentBalanceKeyFmt, normalizeInstrument(instrument), addr[:]))
}

func instrumentSupplyKey(instrument string) []byte {
	return []byte(fmt.Sprintf(instrumentSupplyKeyFormat, normalizeInstrument(instrument)))
}

func normalizeInstrument(instrument string) string {
	return strings.ToLower(strings.TrimSpace(instrument))
}

// InstrumentBalance returns the holding of addr in the named instrument.
func (m *Manager) InstrumentBalance(instrument string, addr [20]byte) (uint64, error) {
	return m.loadUint64(instrumentBalanceKey(instrument, addr))
}

// SetInstrumentBalance stores the holding of addr in the named instrument.
func (m *Manager) SetInstrumentBalance(instrument string, addr [20]byte, amount uint64) error {
	if normalizeInstrument(instrument) == "" {
		return fmt.Errorf("instrument name must not be empty")
	}
	return m.writeUint64(instrumentBalanceKey(instrument, addr), amount)
}

// InstrumentSupply returns the outstanding supply of the named instrument.
func (m *Manager) InstrumentSupply(instrument string) (uint64, error) {
	return m.loadUint64(instrumentSupplyKey(instrument))
}

// SetInstrumentSupply stores the outstanding supply of the named instrument.
func (m *Manager) SetInstrumentSupply(instrument string, amount uint64) error {
	if normalizeInstrument(instrument) == "" {
		return fmt.Errorf("instrument name must not be empty")
	}
	return m.writeUint64(instrumentSupplyKey(instrument), amount)
}
