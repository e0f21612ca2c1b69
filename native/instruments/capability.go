package instruments

import (
	"errors"
	"sync"
)

var (
	ErrUnauthorized      = errors.New("instruments: unauthorized")
	ErrAlreadyIssued     = errors.New("instruments: capability already issued")
	ErrInvalidCapability = errors.New("instruments: invalid capability")
	ErrInvalidValue      = errors.New("instruments: invalid or spent value")
	ErrInvalidAmount     = errors.New("instruments: amount must be positive")
	ErrOverflow          = errors.New("instruments: balance overflow")
	ErrInsufficient      = errors.New("instruments: insufficient holding")
)

// Kind identifies what a capability authorises.
type Kind uint8

const (
	// KindClaim authorises deposits of claimed rewards into the pre-launch
	// instrument.
	KindClaim Kind = iota + 1
	// KindMint authorises fresh issuance of the escrow instrument.
	KindMint
)

func (k Kind) String() string {
	switch k {
	case KindClaim:
		return "claim"
	case KindMint:
		return "mint"
	default:
		return "unknown"
	}
}

// Capability is an opaque authorisation handle. It can only be obtained from
// the Authority of the instrument that honours it and is recognised by
// identity, so a zero value or a struct copy is never accepted.
type Capability struct {
	kind   Kind
	issuer *Authority
}

// Kind reports what the capability authorises.
func (c *Capability) Kind() Kind {
	if c == nil {
		return 0
	}
	return c.kind
}

// Authority issues at most one capability during the life of the process.
type Authority struct {
	kind  Kind
	admin [20]byte

	mu     sync.Mutex
	issued *Capability
}

func newAuthority(kind Kind, admin [20]byte) *Authority {
	return &Authority{kind: kind, admin: admin}
}

// Issue hands out the authority's capability to the administrator. Further
// calls fail with ErrAlreadyIssued.
func (a *Authority) Issue(caller [20]byte) (*Capability, error) {
	if caller != a.admin {
		return nil, ErrUnauthorized
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.issued != nil {
		return nil, ErrAlreadyIssued
	}
	a.issued = &Capability{kind: a.kind, issuer: a}
	return a.issued, nil
}

func (a *Authority) verify(cap *Capability) error {
	if cap == nil || cap.issuer != a || cap.kind != a.kind {
		return ErrInvalidCapability
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.issued != cap {
		return ErrInvalidCapability
	}
	return nil
}
