package rewards

import (
	"time"

	"rewardledger/core/epoch"
	"rewardledger/core/types"
	"rewardledger/native/blocklist"
	"rewardledger/native/instruments"
)

// Reader is the committed state the read views consult.
type Reader interface {
	epoch.Reader
	blocklist.Reader
	instruments.Reader
	RewardsEpochExists(epoch uint64) (bool, error)
	RewardsEpochSupply(epoch uint64) (uint64, error)
	RewardsUserBalance(epoch uint64, addr [20]byte) (uint64, error)
	RewardsUserClaimed(epoch uint64, addr [20]byte) (uint64, error)
	RewardsSchedule(epoch uint64) (uint64, error)
	RewardsInitialized() (bool, error)
}

// State is the transactional state mutated by the engine and its collaborators.
type State interface {
	Reader
	SetEpochCurrent(epoch uint64) error
	SetEpochEndTime(epoch, endTime uint64) error
	SetBlocked(addr [20]byte, blocked bool) error
	SetInstrumentBalance(instrument string, addr [20]byte, amount uint64) error
	SetInstrumentSupply(instrument string, amount uint64) error
	SetRewardsEpochSupply(epoch, supply uint64) error
	SetRewardsUserBalance(epoch uint64, addr [20]byte, balance uint64) error
	SetRewardsUserClaimed(epoch uint64, addr [20]byte, claimed uint64) error
	SetRewardsSchedule(epoch, amount uint64) error
	SetRewardsInitialized() error
	AppendEvent(evt *types.Event) error
}

// Clock numbers epochs and reports when they ended.
type Clock interface {
	CurrentEpoch(st epoch.Reader) (uint64, error)
	EpochEndTime(st epoch.Reader, epoch uint64) (uint64, error)
	RegisterEpoch(st epoch.Writer, caller [20]byte, endTime uint64) (uint64, error)
}

// LaunchOracle reports the one-time program launch.
type LaunchOracle interface {
	LaunchTime() time.Time
}

// BlockGate decides whether an address may claim.
type BlockGate interface {
	CheckNotBlocked(st blocklist.Reader, addr [20]byte) error
	SetBlocked(st blocklist.Writer, caller, addr [20]byte, blocked bool) error
}

// PreLaunchInstrument receives payouts before launch and through the cutover.
type PreLaunchInstrument interface {
	IssueClaimCapability(caller [20]byte) (*instruments.Capability, error)
	Deposit(st instruments.State, cap *instruments.Capability, holder [20]byte, amount uint64) error
	SwapAllToLaunch(st instruments.State, holder [20]byte) (uint64, error)
}

// LaunchInstrument receives swept pre-launch holdings.
type LaunchInstrument interface {
	DepositToPrimary(st instruments.State, holder [20]byte, amount uint64) error
}

// EscrowInstrument receives payouts after the cutover.
type EscrowInstrument interface {
	IssueMintCapability(caller [20]byte) (*instruments.Capability, error)
	MintWithCapability(st instruments.State, cap *instruments.Capability, amount uint64) (*instruments.Value, error)
	Deposit(st instruments.State, holder [20]byte, value *instruments.Value) error
}
