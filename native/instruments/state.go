package instruments

import "rewardledger/core/types"

const (
	// NamePreLaunch is the placeholder instrument rewards land in before launch.
	NamePreLaunch = "prelaunch"
	// NameLaunch is the instrument pre-launch holdings convert into.
	NameLaunch = "launch"
	// NameEscrow is the instrument rewards are minted in after the cutover.
	NameEscrow = "escrow"
)

// Reader is the state needed to read instrument holdings.
type Reader interface {
	InstrumentBalance(instrument string, addr [20]byte) (uint64, error)
	InstrumentSupply(instrument string) (uint64, error)
}

// State is the state mutated by instrument operations.
type State interface {
	Reader
	SetInstrumentBalance(instrument string, addr [20]byte, amount uint64) error
	SetInstrumentSupply(instrument string, amount uint64) error
	AppendEvent(evt *types.Event) error
}

func credit(st State, instrument string, holder [20]byte, amount uint64) error {
	balance, err := st.InstrumentBalance(instrument, holder)
	if err != nil {
		return err
	}
	next := balance + amount
	if next < balance {
		return ErrOverflow
	}
	return st.SetInstrumentBalance(instrument, holder, next)
}

func adjustSupply(st State, instrument string, amount uint64, increase bool) error {
	supply, err := st.InstrumentSupply(instrument)
	if err != nil {
		return err
	}
	var next uint64
	if increase {
		next = supply + amount
		if next < supply {
			return ErrOverflow
		}
	} else {
		if amount > supply {
			return ErrInsufficient
		}
		next = supply - amount
	}
	return st.SetInstrumentSupply(instrument, next)
}
