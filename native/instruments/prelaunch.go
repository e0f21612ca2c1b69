package instruments

import "rewardledger/core/events"

// PreLaunch is the placeholder instrument used before the program launches.
// Deposits require the claim capability issued by its authority.
type PreLaunch struct {
	authority *Authority
}

// NewPreLaunch returns the pre-launch instrument administered by admin.
func NewPreLaunch(admin [20]byte) *PreLaunch {
	return &PreLaunch{authority: newAuthority(KindClaim, admin)}
}

// IssueClaimCapability grants the single claim capability to the administrator.
func (p *PreLaunch) IssueClaimCapability(caller [20]byte) (*Capability, error) {
	return p.authority.Issue(caller)
}

// Deposit credits amount to holder, authorised by the claim capability.
func (p *PreLaunch) Deposit(st State, cap *Capability, holder [20]byte, amount uint64) error {
	if err := p.authority.verify(cap); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if err := adjustSupply(st, NamePreLaunch, amount, true); err != nil {
		return err
	}
	if err := credit(st, NamePreLaunch, holder, amount); err != nil {
		return err
	}
	return st.AppendEvent(events.InstrumentDeposited{Instrument: NamePreLaunch, Holder: holder, Amount: amount}.Event())
}

// SwapAllToLaunch retires holder's entire pre-launch holding and returns the
// amount to be credited in the launch instrument. A zero holding swaps nothing.
func (p *PreLaunch) SwapAllToLaunch(st State, holder [20]byte) (uint64, error) {
	balance, err := st.InstrumentBalance(NamePreLaunch, holder)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, nil
	}
	if err := st.SetInstrumentBalance(NamePreLaunch, holder, 0); err != nil {
		return 0, err
	}
	if err := adjustSupply(st, NamePreLaunch, balance, false); err != nil {
		return 0, err
	}
	if err := st.AppendEvent(events.InstrumentSwapped{From: NamePreLaunch, To: NameLaunch, Holder: holder, Amount: balance}.Event()); err != nil {
		return 0, err
	}
	return balance, nil
}

// Balance returns holder's pre-launch holding.
func (p *PreLaunch) Balance(st Reader, holder [20]byte) (uint64, error) {
	return st.InstrumentBalance(NamePreLaunch, holder)
}
