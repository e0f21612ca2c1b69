package rewards

import (
	"context"
	"log/slog"

	"rewardledger/core/events"
	"rewardledger/core/state"
)

// SetReward assigns the reward pool of epoch. The last write wins and future
// epochs may be scheduled ahead of time.
func (e *Engine) SetReward(ctx context.Context, caller [20]byte, epoch, amount uint64) error {
	_, span := e.tracer.Start(ctx, "rewards.SetReward")
	defer span.End()
	span.SetAttributes(epochAttr(epoch))

	if caller != e.params.Admin {
		e.telemetry.ObserveRejection("set_reward", rejectionReason(ErrUnauthorized))
		return ErrUnauthorized
	}
	var previous uint64
	err := e.store.Update(func(tx *state.Tx) error {
		var err error
		previous, err = tx.RewardsSchedule(epoch)
		if err != nil {
			return err
		}
		if err := tx.SetRewardsSchedule(epoch, amount); err != nil {
			return err
		}
		return tx.AppendEvent(events.RewardsScheduleUpdated{Epoch: epoch, Amount: amount, Previous: previous}.Event())
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	e.telemetry.ObserveScheduleUpdate()
	e.log().Info("reward schedule updated",
		slog.Uint64("epoch", epoch),
		slog.Uint64("amount", amount),
		slog.Uint64("previous", previous))
	return nil
}

// RewardFor returns the reward pool of epoch, zero when unset.
func (e *Engine) RewardFor(epoch uint64) (uint64, error) {
	var amount uint64
	err := e.view(func(st Reader) error {
		var err error
		amount, err = st.RewardsSchedule(epoch)
		return err
	})
	return amount, err
}

// Initialized reports whether the bootstrap schedule has been seeded.
func (e *Engine) Initialized() (bool, error) {
	var initialized bool
	err := e.view(func(st Reader) error {
		var err error
		initialized, err = st.RewardsInitialized()
		return err
	})
	return initialized, err
}
