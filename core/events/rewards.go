package events

import "rewardledger/core/types"

const (
	// TypeRewardsPointsAccrued is emitted when points are accrued in the current epoch.
	TypeRewardsPointsAccrued = "rewards.points.accrued"
	// TypeRewardsScheduleUpdated is emitted when an epoch's reward pool is written.
	TypeRewardsScheduleUpdated = "rewards.schedule.updated"
	// TypeRewardsInitialized is emitted once, when the bootstrap schedule is seeded.
	TypeRewardsInitialized = "rewards.initialized"
	// TypeRewardsClaimed is emitted when a participant settles an epoch entitlement.
	TypeRewardsClaimed = "rewards.claimed"
)

// RewardsPointsAccrued captures a single accrual against the current epoch.
type RewardsPointsAccrued struct {
	Epoch  uint64
	User   [20]byte
	Amount uint64
}

func (RewardsPointsAccrued) EventType() string { return TypeRewardsPointsAccrued }

func (e RewardsPointsAccrued) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsPointsAccrued,
		Attributes: map[string]string{
			"epoch":  formatUint(e.Epoch),
			"user":   formatAddress(e.User),
			"amount": formatUint(e.Amount),
		},
	}
}

// RewardsScheduleUpdated records an administrator write to the reward schedule.
type RewardsScheduleUpdated struct {
	Epoch    uint64
	Amount   uint64
	Previous uint64
}

func (RewardsScheduleUpdated) EventType() string { return TypeRewardsScheduleUpdated }

func (e RewardsScheduleUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsScheduleUpdated,
		Attributes: map[string]string{
			"epoch":    formatUint(e.Epoch),
			"amount":   formatUint(e.Amount),
			"previous": formatUint(e.Previous),
		},
	}
}

// RewardsInitialized records the bootstrap of the historical schedule.
type RewardsInitialized struct {
	Admin  [20]byte
	Epochs uint64
}

func (RewardsInitialized) EventType() string { return TypeRewardsInitialized }

func (e RewardsInitialized) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsInitialized,
		Attributes: map[string]string{
			"admin":  formatAddress(e.Admin),
			"epochs": formatUint(e.Epochs),
		},
	}
}

// RewardsClaimed captures a settled claim and the payout route that served it.
type RewardsClaimed struct {
	Epoch  uint64
	User   [20]byte
	Amount uint64
	Points uint64
	Route  string
}

func (RewardsClaimed) EventType() string { return TypeRewardsClaimed }

func (e RewardsClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeRewardsClaimed,
		Attributes: map[string]string{
			"epoch":  formatUint(e.Epoch),
			"user":   formatAddress(e.User),
			"amount": formatUint(e.Amount),
			"points": formatUint(e.Points),
			"route":  e.Route,
		},
	}
}
