package rewards

import (
	"errors"

	"rewardledger/native/instruments"
)

// EpochSummary is the aggregate view of one epoch. Unknown epochs produce a
// zero-valued summary apart from the epoch number.
type EpochSummary struct {
	Epoch        uint64 `json:"epoch"`
	Current      bool   `json:"current"`
	Exists       bool   `json:"exists"`
	Supply       uint64 `json:"supply"`
	RewardPool   uint64 `json:"rewardPool"`
	EndTime      uint64 `json:"endTime"`
	ClaimsOpen   bool   `json:"claimsOpen"`
	ClaimsExpire uint64 `json:"claimsExpire,omitempty"`
}

// UserSummary is one participant's position in one epoch.
type UserSummary struct {
	Epoch     uint64   `json:"epoch"`
	User      [20]byte `json:"-"`
	Balance   uint64   `json:"balance"`
	Claimed   uint64   `json:"claimed"`
	Claimable uint64   `json:"claimable"`
}

// Holdings reports the payout instrument balances of a participant.
type Holdings struct {
	PreLaunch uint64 `json:"prelaunch"`
	Launch    uint64 `json:"launch"`
	Escrow    uint64 `json:"escrow"`
}

// CurrentEpochSummary summarises the epoch accruals currently target.
func (e *Engine) CurrentEpochSummary() (EpochSummary, error) {
	var summary EpochSummary
	err := e.view(func(st Reader) error {
		current, err := e.deps.Clock.CurrentEpoch(st)
		if err != nil {
			return err
		}
		summary, err = e.epochSummary(st, current, current)
		return err
	})
	return summary, err
}

// EpochSummary summarises epoch.
func (e *Engine) EpochSummary(epoch uint64) (EpochSummary, error) {
	var summary EpochSummary
	err := e.view(func(st Reader) error {
		current, err := e.deps.Clock.CurrentEpoch(st)
		if err != nil {
			return err
		}
		summary, err = e.epochSummary(st, epoch, current)
		return err
	})
	return summary, err
}

func (e *Engine) epochSummary(st Reader, epoch, current uint64) (EpochSummary, error) {
	summary := EpochSummary{Epoch: epoch, Current: epoch == current}
	var err error
	if summary.Exists, err = st.RewardsEpochExists(epoch); err != nil {
		return summary, err
	}
	if summary.Supply, err = st.RewardsEpochSupply(epoch); err != nil {
		return summary, err
	}
	if summary.RewardPool, err = st.RewardsSchedule(epoch); err != nil {
		return summary, err
	}
	if summary.EndTime, err = e.deps.Clock.EpochEndTime(st, epoch); err != nil {
		return summary, err
	}
	if summary.EndTime > 0 {
		summary.ClaimsExpire = summary.EndTime + uint64(e.params.ClaimWindow.Seconds())
	}
	switch err := e.checkEligible(st, epoch, e.now()); {
	case err == nil:
		summary.ClaimsOpen = true
	case errors.Is(err, ErrNoClaimable), errors.Is(err, ErrClaimExpired):
	default:
		return summary, err
	}
	return summary, nil
}

// UserEpochSummary returns user's position in epoch. Unknown users and
// epochs produce zero balances.
func (e *Engine) UserEpochSummary(user [20]byte, epoch uint64) (UserSummary, error) {
	summary := UserSummary{Epoch: epoch, User: user}
	now := e.now()
	err := e.view(func(st Reader) error {
		var err error
		if summary.Balance, err = st.RewardsUserBalance(epoch, user); err != nil {
			return err
		}
		if summary.Claimed, err = st.RewardsUserClaimed(epoch, user); err != nil {
			return err
		}
		summary.Claimable, err = e.claimable(st, user, epoch, now)
		return err
	})
	return summary, err
}

// Holdings returns the pre-launch, launch and escrow balances of user.
func (e *Engine) Holdings(user [20]byte) (Holdings, error) {
	var h Holdings
	err := e.view(func(st Reader) error {
		var err error
		if h.PreLaunch, err = st.InstrumentBalance(instruments.NamePreLaunch, user); err != nil {
			return err
		}
		if h.Launch, err = st.InstrumentBalance(instruments.NameLaunch, user); err != nil {
			return err
		}
		h.Escrow, err = st.InstrumentBalance(instruments.NameEscrow, user)
		return err
	})
	return h, err
}
