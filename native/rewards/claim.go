package rewards

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"rewardledger/core/events"
	"rewardledger/core/state"
	"rewardledger/native/blocklist"
)

// ClaimReceipt describes a settled claim.
type ClaimReceipt struct {
	Epoch  uint64
	User   [20]byte
	Amount uint64
	// Points is the number of points settled by this claim.
	Points uint64
	Route  Route
	// Swept is the amount credited to the launch instrument when the route
	// converted the claimant's pre-launch holding.
	Swept uint64
}

// claimsOpen reports whether epoch is closed and at or after the first
// claimable epoch. Both ClaimableAmount and Claim use it.
func (e *Engine) claimsOpen(epoch, current uint64) bool {
	return epoch >= e.params.ClaimsOpenEpoch && epoch < current
}

// withinWindow compares whole seconds; the final second of the window is
// claimable in full.
func withinWindow(endTime uint64, window time.Duration, now time.Time) bool {
	unix := now.Unix()
	if unix < 0 {
		return true
	}
	deadline := endTime + uint64(window/time.Second)
	if deadline < endTime {
		return true
	}
	return uint64(unix) <= deadline
}

// checkEligible returns ErrNoClaimable or ErrClaimExpired when epoch cannot be
// claimed at now.
func (e *Engine) checkEligible(st Reader, epoch uint64, now time.Time) error {
	current, err := e.deps.Clock.CurrentEpoch(st)
	if err != nil {
		return err
	}
	if !e.claimsOpen(epoch, current) {
		return ErrNoClaimable
	}
	endTime, err := e.deps.Clock.EpochEndTime(st, epoch)
	if err != nil {
		return err
	}
	if !withinWindow(endTime, e.params.ClaimWindow, now) {
		return ErrClaimExpired
	}
	return nil
}

// ClaimableAmount returns what user could claim from epoch right now. It is
// zero whenever Claim would be refused for eligibility reasons.
func (e *Engine) ClaimableAmount(user [20]byte, epoch uint64) (uint64, error) {
	now := e.now()
	var amount uint64
	err := e.view(func(st Reader) error {
		var err error
		amount, err = e.claimable(st, user, epoch, now)
		return err
	})
	return amount, err
}

func (e *Engine) claimable(st Reader, user [20]byte, epoch uint64, now time.Time) (uint64, error) {
	if err := e.checkEligible(st, epoch, now); err != nil {
		if errors.Is(err, ErrNoClaimable) || errors.Is(err, ErrClaimExpired) {
			return 0, nil
		}
		return 0, err
	}
	pos, err := loadPosition(st, user, epoch)
	if err != nil {
		return 0, err
	}
	return pos.entitlement()
}

// Claim settles caller's unclaimed points in epoch and pays the entitlement
// out through the route selected for epoch. On any error no state changes.
func (e *Engine) Claim(ctx context.Context, caller [20]byte, epoch uint64) (*ClaimReceipt, error) {
	_, span := e.tracer.Start(ctx, "rewards.Claim")
	defer span.End()
	span.SetAttributes(epochAttr(epoch))

	receipt, err := e.claim(caller, epoch)
	if err != nil {
		reason := rejectionReason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		e.telemetry.ObserveRejection("claim", reason)
		e.log().Warn("claim rejected",
			slog.Uint64("epoch", epoch),
			slog.String("reason", reason),
			slog.Any("error", err))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("rewards.route", receipt.Route.String()),
		attribute.Int64("rewards.amount", int64(receipt.Amount)),
	)
	e.telemetry.ObserveClaim(receipt.Route.String(), receipt.Amount)
	e.log().Info("claim settled",
		slog.Uint64("epoch", epoch),
		slog.Uint64("amount", receipt.Amount),
		slog.String("route", receipt.Route.String()))
	return receipt, nil
}

func (e *Engine) claim(caller [20]byte, epoch uint64) (*ClaimReceipt, error) {
	caps := e.capabilities()
	if caps == nil {
		return nil, ErrNotInitialized
	}
	now := e.now()
	var receipt *ClaimReceipt
	err := e.store.Update(func(tx *state.Tx) error {
		if err := e.deps.Gate.CheckNotBlocked(tx, caller); err != nil {
			if errors.Is(err, blocklist.ErrBlocked) {
				return ErrBlocked
			}
			return err
		}
		if err := e.checkEligible(tx, epoch, now); err != nil {
			return err
		}
		pos, err := loadPosition(tx, caller, epoch)
		if err != nil {
			return err
		}
		amount, err := pos.entitlement()
		if err != nil {
			return err
		}
		if amount == 0 {
			return ErrNoClaimable
		}
		if err := tx.SetRewardsUserClaimed(epoch, caller, pos.balance); err != nil {
			return err
		}
		route := e.selectRoute(epoch, now)
		swept, err := e.payout(tx, caps, route, caller, amount)
		if err != nil {
			return err
		}
		receipt = &ClaimReceipt{
			Epoch:  epoch,
			User:   caller,
			Amount: amount,
			Points: pos.balance - pos.claimed,
			Route:  route,
			Swept:  swept,
		}
		return tx.AppendEvent(events.RewardsClaimed{
			Epoch:  epoch,
			User:   caller,
			Amount: amount,
			Points: receipt.Points,
			Route:  route.String(),
		}.Event())
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
