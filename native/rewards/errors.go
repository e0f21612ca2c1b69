package rewards

import "errors"

var (
	// ErrUnauthorized is returned when the caller is not the administrator or
	// a registered accruer.
	ErrUnauthorized = errors.New("rewards: unauthorized")
	// ErrBlocked is returned when the claimant is on the block list.
	ErrBlocked = errors.New("rewards: claimant blocked")
	// ErrNoClaimable is returned when claims are not open for the epoch or
	// the entitlement is zero.
	ErrNoClaimable = errors.New("rewards: nothing claimable")
	// ErrClaimExpired is returned when the claim window of the epoch has
	// elapsed.
	ErrClaimExpired = errors.New("rewards: claim window expired")
	// ErrOverflow is returned when an accrual would overflow a counter.
	ErrOverflow = errors.New("rewards: points overflow")
	// ErrInvariant signals an internal accounting inconsistency.
	ErrInvariant = errors.New("rewards: internal invariant violated")
	// ErrNotInitialized is returned by Claim before Initialize has obtained
	// the payout capabilities.
	ErrNotInitialized = errors.New("rewards: engine not initialized")
)
