package instruments

import "rewardledger/core/events"

// Launch is the instrument that pre-launch holdings are converted into.
type Launch struct{}

// NewLaunch returns the launch instrument.
func NewLaunch() *Launch {
	return &Launch{}
}

// DepositToPrimary credits amount to holder's primary holding.
func (l *Launch) DepositToPrimary(st State, holder [20]byte, amount uint64) error {
	if amount == 0 {
		return ErrInvalidAmount
	}
	if err := adjustSupply(st, NameLaunch, amount, true); err != nil {
		return err
	}
	if err := credit(st, NameLaunch, holder, amount); err != nil {
		return err
	}
	return st.AppendEvent(events.InstrumentDeposited{Instrument: NameLaunch, Holder: holder, Amount: amount}.Event())
}

// PrimaryBalance returns holder's primary holding.
func (l *Launch) PrimaryBalance(st Reader, holder [20]byte) (uint64, error) {
	return st.InstrumentBalance(NameLaunch, holder)
}
