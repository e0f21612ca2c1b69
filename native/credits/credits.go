// Package credits implements the secondary points currency: a flat supply and
// per-user balance that privileged collaborators mint and burn.
package credits

import (
	"errors"
	"fmt"

	"rewardledger/core/events"
	"rewardledger/core/types"
)

var (
	ErrUnauthorized        = errors.New("credits: unauthorized")
	ErrInvalidAmount       = errors.New("credits: amount must be positive")
	ErrInsufficientBalance = errors.New("credits: insufficient balance")
	ErrOverflow            = errors.New("credits: supply overflow")
)

// Reader is the state read by balance queries.
type Reader interface {
	CreditsSupply() (uint64, error)
	CreditsBalance(addr [20]byte) (uint64, error)
}

// State is the state mutated by Mint and Burn.
type State interface {
	Reader
	SetCreditsSupply(supply uint64) error
	SetCreditsBalance(addr [20]byte, balance uint64) error
	AppendEvent(evt *types.Event) error
}

// Ledger authorises mint and burn calls against a fixed set of callers.
type Ledger struct {
	privileged map[[20]byte]struct{}
}

// NewLedger returns a ledger that accepts mint and burn calls from the
// provided addresses.
func NewLedger(privileged ...[20]byte) *Ledger {
	set := make(map[[20]byte]struct{}, len(privileged))
	for _, addr := range privileged {
		set[addr] = struct{}{}
	}
	return &Ledger{privileged: set}
}

func (l *Ledger) authorize(caller [20]byte) error {
	if _, ok := l.privileged[caller]; !ok {
		return ErrUnauthorized
	}
	return nil
}

// Mint credits amount to user and grows the supply.
func (l *Ledger) Mint(st State, caller, user [20]byte, amount uint64) error {
	if err := l.authorize(caller); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	supply, err := st.CreditsSupply()
	if err != nil {
		return err
	}
	balance, err := st.CreditsBalance(user)
	if err != nil {
		return err
	}
	if supply+amount < supply || balance+amount < balance {
		return ErrOverflow
	}
	if err := st.SetCreditsSupply(supply + amount); err != nil {
		return err
	}
	if err := st.SetCreditsBalance(user, balance+amount); err != nil {
		return err
	}
	return st.AppendEvent(events.CreditsMinted{User: user, Amount: amount}.Event())
}

// Burn debits amount from user and shrinks the supply.
func (l *Ledger) Burn(st State, caller, user [20]byte, amount uint64) error {
	if err := l.authorize(caller); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	balance, err := st.CreditsBalance(user)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, balance, amount)
	}
	supply, err := st.CreditsSupply()
	if err != nil {
		return err
	}
	if supply < amount {
		return fmt.Errorf("credits: supply %d below burn %d", supply, amount)
	}
	if err := st.SetCreditsSupply(supply - amount); err != nil {
		return err
	}
	if err := st.SetCreditsBalance(user, balance-amount); err != nil {
		return err
	}
	return st.AppendEvent(events.CreditsBurned{User: user, Amount: amount}.Event())
}

// Supply returns the outstanding credits.
func (l *Ledger) Supply(st Reader) (uint64, error) {
	return st.CreditsSupply()
}

// Balance returns user's credits.
func (l *Ledger) Balance(st Reader, user [20]byte) (uint64, error) {
	return st.CreditsBalance(user)
}
