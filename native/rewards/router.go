package rewards

import (
	"fmt"
	"time"
)

// Route names the instrument a claim was paid out through.
type Route string

const (
	// RoutePreLaunch deposits into the pre-launch instrument.
	RoutePreLaunch Route = "prelaunch"
	// RouteSwept deposits into the pre-launch instrument and then converts
	// the claimant's whole pre-launch holding into the launch instrument.
	RouteSwept Route = "swept"
	// RouteEscrow mints fresh escrow value for the claimant.
	RouteEscrow Route = "escrow"
)

func (r Route) String() string { return string(r) }

// selectRoute picks the payout route of a claim on epoch made at now.
func (e *Engine) selectRoute(epoch uint64, now time.Time) Route {
	if now.Before(e.deps.Launch.LaunchTime()) {
		return RoutePreLaunch
	}
	if epoch <= e.params.CutoverEpoch {
		return RouteSwept
	}
	return RouteEscrow
}

// payout moves amount to holder through route and returns how much was
// credited to the launch instrument by a sweep.
func (e *Engine) payout(st State, caps *capabilities, route Route, holder [20]byte, amount uint64) (uint64, error) {
	switch route {
	case RoutePreLaunch, RouteSwept:
		if err := e.deps.PreLaunch.Deposit(st, caps.claim, holder, amount); err != nil {
			return 0, fmt.Errorf("rewards: pre-launch deposit: %w", err)
		}
		if route == RoutePreLaunch {
			return 0, nil
		}
		swept, err := e.deps.PreLaunch.SwapAllToLaunch(st, holder)
		if err != nil {
			return 0, fmt.Errorf("rewards: swap to launch: %w", err)
		}
		if swept == 0 {
			return 0, fmt.Errorf("%w: empty pre-launch holding after deposit", ErrInvariant)
		}
		if err := e.deps.Primary.DepositToPrimary(st, holder, swept); err != nil {
			return 0, fmt.Errorf("rewards: launch deposit: %w", err)
		}
		return swept, nil
	case RouteEscrow:
		value, err := e.deps.Escrow.MintWithCapability(st, caps.mint, amount)
		if err != nil {
			return 0, fmt.Errorf("rewards: escrow mint: %w", err)
		}
		if err := e.deps.Escrow.Deposit(st, holder, value); err != nil {
			return 0, fmt.Errorf("rewards: escrow deposit: %w", err)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown route %q", ErrInvariant, route)
	}
}
