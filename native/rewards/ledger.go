package rewards

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"

	"rewardledger/core/events"
	"rewardledger/core/state"
)

// Accrue credits amount points to user in the current epoch. Only registered
// accruers may call it. Overflowing either the epoch supply or the user
// balance aborts the accrual.
func (e *Engine) Accrue(ctx context.Context, caller, user [20]byte, amount uint64) error {
	_, span := e.tracer.Start(ctx, "rewards.Accrue")
	defer span.End()

	if !e.params.isAccruer(caller) {
		e.telemetry.ObserveRejection("accrue", rejectionReason(ErrUnauthorized))
		return ErrUnauthorized
	}
	var current uint64
	err := e.store.Update(func(tx *state.Tx) error {
		var err error
		current, err = e.deps.Clock.CurrentEpoch(tx)
		if err != nil {
			return err
		}
		return accrue(tx, current, user, amount)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.telemetry.ObserveRejection("accrue", rejectionReason(err))
		return err
	}
	span.SetAttributes(epochAttr(current))
	e.telemetry.ObserveAccrual(amount)
	e.telemetry.SetCurrentEpoch(current)
	e.log().Debug("points accrued", slog.Uint64("epoch", current), slog.Uint64("amount", amount))
	return nil
}

func accrue(st State, epoch uint64, user [20]byte, amount uint64) error {
	supply, err := st.RewardsEpochSupply(epoch)
	if err != nil {
		return err
	}
	balance, err := st.RewardsUserBalance(epoch, user)
	if err != nil {
		return err
	}
	nextSupply := supply + amount
	nextBalance := balance + amount
	if nextSupply < supply || nextBalance < balance {
		return ErrOverflow
	}
	if err := st.SetRewardsEpochSupply(epoch, nextSupply); err != nil {
		return err
	}
	if err := st.SetRewardsUserBalance(epoch, user, nextBalance); err != nil {
		return err
	}
	return st.AppendEvent(events.RewardsPointsAccrued{Epoch: epoch, User: user, Amount: amount}.Event())
}

// CurrentEpoch returns the epoch accruals currently target.
func (e *Engine) CurrentEpoch() (uint64, error) {
	var current uint64
	err := e.view(func(st Reader) error {
		var err error
		current, err = e.deps.Clock.CurrentEpoch(st)
		return err
	})
	return current, err
}

// EpochSupply returns the points issued in epoch. Unknown epochs report zero.
func (e *Engine) EpochSupply(epoch uint64) (uint64, error) {
	var supply uint64
	err := e.view(func(st Reader) error {
		var err error
		supply, err = st.RewardsEpochSupply(epoch)
		return err
	})
	return supply, err
}

// UserBalance returns the points user accrued in epoch.
func (e *Engine) UserBalance(user [20]byte, epoch uint64) (uint64, error) {
	var balance uint64
	err := e.view(func(st Reader) error {
		var err error
		balance, err = st.RewardsUserBalance(epoch, user)
		return err
	})
	return balance, err
}

// UserClaimed returns the points of user already settled in epoch.
func (e *Engine) UserClaimed(user [20]byte, epoch uint64) (uint64, error) {
	var claimed uint64
	err := e.view(func(st Reader) error {
		var err error
		claimed, err = st.RewardsUserClaimed(epoch, user)
		return err
	})
	return claimed, err
}
