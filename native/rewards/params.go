package rewards

import (
	"fmt"
	"time"
)

const (
	// DefaultClaimsOpenEpoch is the first epoch whose rewards can be claimed.
	DefaultClaimsOpenEpoch uint64 = 16
	// DefaultCutoverEpoch is the last epoch whose post-launch claims are
	// swept from the pre-launch instrument into the launch instrument.
	DefaultCutoverEpoch uint64 = 18
	// DefaultClaimWindow is how long after an epoch ends its rewards remain
	// claimable.
	DefaultClaimWindow = 28 * 24 * time.Hour
)

// DefaultBootstrapSchedule is the historical reward schedule seeded for
// epochs 1..N on first initialization. Pools are zero until claims open.
var DefaultBootstrapSchedule = []uint64{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1_000_000_000,
	1_000_000_000,
	1_000_000_000,
	750_000_000,
	750_000_000,
}

// Params configures the rewards engine.
type Params struct {
	// Admin controls initialization, the reward schedule, the epoch clock
	// and the block list.
	Admin [20]byte
	// Accruers may call Accrue.
	Accruers [][20]byte
	// ClaimsOpenEpoch is the first claimable epoch.
	ClaimsOpenEpoch uint64
	// CutoverEpoch is the last epoch routed through the pre-launch sweep.
	CutoverEpoch uint64
	// ClaimWindow bounds how long after its end an epoch can be claimed.
	// The boundary is inclusive.
	ClaimWindow time.Duration
	// BootstrapSchedule holds the reward pools of epochs 1..len.
	BootstrapSchedule []uint64
}

// DefaultParams returns the production parameters for admin.
func DefaultParams(admin [20]byte) Params {
	return Params{
		Admin:             admin,
		ClaimsOpenEpoch:   DefaultClaimsOpenEpoch,
		CutoverEpoch:      DefaultCutoverEpoch,
		ClaimWindow:       DefaultClaimWindow,
		BootstrapSchedule: append([]uint64(nil), DefaultBootstrapSchedule...),
	}
}

// Validate ensures the parameters describe a usable engine.
func (p Params) Validate() error {
	if p.Admin == ([20]byte{}) {
		return fmt.Errorf("rewards: admin address required")
	}
	if p.ClaimsOpenEpoch == 0 {
		return fmt.Errorf("rewards: claims open epoch must be positive")
	}
	if p.ClaimWindow < time.Second {
		return fmt.Errorf("rewards: claim window must be at least one second")
	}
	for i, accruer := range p.Accruers {
		if accruer == ([20]byte{}) {
			return fmt.Errorf("rewards: accruer %d is the zero address", i)
		}
	}
	return nil
}

func (p Params) isAccruer(addr [20]byte) bool {
	for _, accruer := range p.Accruers {
		if accruer == addr {
			return true
		}
	}
	return false
}
