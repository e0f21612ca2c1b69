package instruments

import "rewardledger/core/events"

// Value is freshly minted escrow supply that has not been deposited yet. It
// can only be produced by MintWithCapability and is consumed by Deposit.
type Value struct {
	amount uint64
	spent  bool
	issuer *Escrow
}

// Amount reports the minted amount.
func (v *Value) Amount() uint64 {
	if v == nil {
		return 0
	}
	return v.amount
}

// Escrow is the instrument rewards are issued in after the cutover.
type Escrow struct {
	authority *Authority
}

// NewEscrow returns the escrow instrument administered by admin.
func NewEscrow(admin [20]byte) *Escrow {
	return &Escrow{authority: newAuthority(KindMint, admin)}
}

// IssueMintCapability grants the single mint capability to the administrator.
func (e *Escrow) IssueMintCapability(caller [20]byte) (*Capability, error) {
	return e.authority.Issue(caller)
}

// MintWithCapability creates amount of new escrow supply.
func (e *Escrow) MintWithCapability(st State, cap *Capability, amount uint64) (*Value, error) {
	if err := e.authority.verify(cap); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if err := adjustSupply(st, NameEscrow, amount, true); err != nil {
		return nil, err
	}
	return &Value{amount: amount, issuer: e}, nil
}

// Deposit credits a minted value to holder. A value can be deposited once.
func (e *Escrow) Deposit(st State, holder [20]byte, value *Value) error {
	if value == nil || value.spent || value.issuer != e || value.amount == 0 {
		return ErrInvalidValue
	}
	if err := credit(st, NameEscrow, holder, value.amount); err != nil {
		return err
	}
	value.spent = true
	return st.AppendEvent(events.InstrumentDeposited{Instrument: NameEscrow, Holder: holder, Amount: value.amount}.Event())
}

// Balance returns holder's escrow holding.
func (e *Escrow) Balance(st Reader, holder [20]byte) (uint64, error) {
	return st.InstrumentBalance(NameEscrow, holder)
}
