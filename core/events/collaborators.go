package events

import "rewardledger/core/types"

const (
	// TypeEpochRegistered is emitted when the epoch clock closes an epoch.
	TypeEpochRegistered = "epoch.registered"
	// TypeBlocklistUpdated is emitted when an address is added to or removed
	// from the block list.
	TypeBlocklistUpdated = "blocklist.updated"
	// TypeInstrumentDeposited is emitted when an instrument credits a holder.
	TypeInstrumentDeposited = "instrument.deposited"
	// TypeInstrumentSwapped is emitted when a pre-launch holding is converted.
	TypeInstrumentSwapped = "instrument.swapped"
	// TypeCreditsMinted is emitted when secondary credits are minted.
	TypeCreditsMinted = "credits.minted"
	// TypeCreditsBurned is emitted when secondary credits are burned.
	TypeCreditsBurned = "credits.burned"
)

// EpochRegistered records the closing of an epoch.
type EpochRegistered struct {
	Epoch   uint64
	EndTime uint64
}

func (EpochRegistered) EventType() string { return TypeEpochRegistered }

func (e EpochRegistered) Event() *types.Event {
	return &types.Event{
		Type: TypeEpochRegistered,
		Attributes: map[string]string{
			"epoch":   formatUint(e.Epoch),
			"endTime": formatUint(e.EndTime),
		},
	}
}

// BlocklistUpdated records a block-list change.
type BlocklistUpdated struct {
	Address [20]byte
	Blocked bool
}

func (BlocklistUpdated) EventType() string { return TypeBlocklistUpdated }

func (e BlocklistUpdated) Event() *types.Event {
	blocked := "false"
	if e.Blocked {
		blocked = "true"
	}
	return &types.Event{
		Type: TypeBlocklistUpdated,
		Attributes: map[string]string{
			"address": formatAddress(e.Address),
			"blocked": blocked,
		},
	}
}

// InstrumentDeposited records a credit into an instrument holding.
type InstrumentDeposited struct {
	Instrument string
	Holder     [20]byte
	Amount     uint64
}

func (InstrumentDeposited) EventType() string { return TypeInstrumentDeposited }

func (e InstrumentDeposited) Event() *types.Event {
	return &types.Event{
		Type: TypeInstrumentDeposited,
		Attributes: map[string]string{
			"instrument": e.Instrument,
			"holder":     formatAddress(e.Holder),
			"amount":     formatUint(e.Amount),
		},
	}
}

// InstrumentSwapped records a full pre-launch to launch conversion.
type InstrumentSwapped struct {
	From   string
	To     string
	Holder [20]byte
	Amount uint64
}

func (InstrumentSwapped) EventType() string { return TypeInstrumentSwapped }

func (e InstrumentSwapped) Event() *types.Event {
	return &types.Event{
		Type: TypeInstrumentSwapped,
		Attributes: map[string]string{
			"from":   e.From,
			"to":     e.To,
			"holder": formatAddress(e.Holder),
			"amount": formatUint(e.Amount),
		},
	}
}

// CreditsMinted records a secondary credit mint.
type CreditsMinted struct {
	User   [20]byte
	Amount uint64
}

func (CreditsMinted) EventType() string { return TypeCreditsMinted }

func (e CreditsMinted) Event() *types.Event {
	return &types.Event{
		Type: TypeCreditsMinted,
		Attributes: map[string]string{
			"user":   formatAddress(e.User),
			"amount": formatUint(e.Amount),
		},
	}
}

// CreditsBurned records a secondary credit burn.
type CreditsBurned struct {
	User   [20]byte
	Amount uint64
}

func (CreditsBurned) EventType() string { return TypeCreditsBurned }

func (e CreditsBurned) Event() *types.Event {
	return &types.Event{
		Type: TypeCreditsBurned,
		Attributes: map[string]string{
			"user":   formatAddress(e.User),
			"amount": formatUint(e.Amount),
		},
	}
}
