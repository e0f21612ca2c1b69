package blocklist

import (
	"errors"

	"rewardledger/core/events"
	"rewardledger/core/types"
)

var (
	ErrBlocked      = errors.New("blocklist: address blocked")
	ErrUnauthorized = errors.New("blocklist: unauthorized")
)

// Reader is the state consulted when gating a caller.
type Reader interface {
	IsBlocked(addr [20]byte) (bool, error)
}

// Writer is the state mutated by block-list administration.
type Writer interface {
	Reader
	SetBlocked(addr [20]byte, blocked bool) error
	AppendEvent(evt *types.Event) error
}

// Gate authorises callers against the persisted block list.
type Gate struct {
	admin [20]byte
}

// NewGate returns a gate administered by admin.
func NewGate(admin [20]byte) *Gate {
	return &Gate{admin: admin}
}

// CheckNotBlocked fails with ErrBlocked when addr is listed.
func (g *Gate) CheckNotBlocked(st Reader, addr [20]byte) error {
	blocked, err := st.IsBlocked(addr)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlocked
	}
	return nil
}

// SetBlocked adds or removes addr. Only the administrator may change the list.
func (g *Gate) SetBlocked(st Writer, caller, addr [20]byte, blocked bool) error {
	if caller != g.admin {
		return ErrUnauthorized
	}
	current, err := st.IsBlocked(addr)
	if err != nil {
		return err
	}
	if current == blocked {
		return nil
	}
	if err := st.SetBlocked(addr, blocked); err != nil {
		return err
	}
	return st.AppendEvent(events.BlocklistUpdated{Address: addr, Blocked: blocked}.Event())
}
