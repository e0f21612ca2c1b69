package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rewardledger/core/events"
	"rewardledger/core/state"
	"rewardledger/native/instruments"
	"rewardledger/observability/metrics"
)

const tracerName = "rewardledger/native/rewards"

// Deps bundles the collaborators the engine delegates to.
type Deps struct {
	Clock     Clock
	Launch    LaunchOracle
	Gate      BlockGate
	PreLaunch PreLaunchInstrument
	Primary   LaunchInstrument
	Escrow    EscrowInstrument
}

func (d Deps) validate() error {
	switch {
	case d.Clock == nil:
		return fmt.Errorf("rewards: epoch clock required")
	case d.Launch == nil:
		return fmt.Errorf("rewards: launch oracle required")
	case d.Gate == nil:
		return fmt.Errorf("rewards: block gate required")
	case d.PreLaunch == nil:
		return fmt.Errorf("rewards: pre-launch instrument required")
	case d.Primary == nil:
		return fmt.Errorf("rewards: launch instrument required")
	case d.Escrow == nil:
		return fmt.Errorf("rewards: escrow instrument required")
	}
	return nil
}

// capabilities holds the payout handles obtained during Initialize.
type capabilities struct {
	claim *instruments.Capability
	mint  *instruments.Capability
}

// Engine owns the epoch points ledger, the reward schedule and claim
// settlement. Every mutation runs as one state.Store transaction.
type Engine struct {
	store  *state.Store
	params Params
	deps   Deps

	mu   sync.Mutex
	caps *capabilities
	// partial keeps handles issued by a failed Initialize; authorities
	// issue each capability once per process.
	partial capabilities

	nowFn     func() time.Time
	logger    *slog.Logger
	telemetry *metrics.RewardsMetrics
	tracer    trace.Tracer
}

// NewEngine validates params and deps and returns an engine bound to store.
func NewEngine(store *state.Store, params Params, deps Deps) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("rewards: state store required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	params.Accruers = append([][20]byte(nil), params.Accruers...)
	params.BootstrapSchedule = append([]uint64(nil), params.BootstrapSchedule...)
	return &Engine{
		store:     store,
		params:    params,
		deps:      deps,
		nowFn:     time.Now,
		logger:    slog.Default(),
		telemetry: metrics.Rewards(),
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// SetNowFunc overrides the wall clock used for claim windows and routing.
func (e *Engine) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		fn = time.Now
	}
	e.mu.Lock()
	e.nowFn = fn
	e.mu.Unlock()
}

// SetLogger overrides the engine logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// Params returns a copy of the engine parameters.
func (e *Engine) Params() Params {
	p := e.params
	p.Accruers = append([][20]byte(nil), e.params.Accruers...)
	p.BootstrapSchedule = append([]uint64(nil), e.params.BootstrapSchedule...)
	return p
}

func (e *Engine) now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nowFn()
}

func (e *Engine) log() *slog.Logger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.logger
}

func (e *Engine) capabilities() *capabilities {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.caps
}

// Initialize obtains the payout capabilities and, on first run, seeds the
// bootstrap reward schedule. Only the administrator may call it; repeated
// calls are no-ops.
func (e *Engine) Initialize(ctx context.Context, caller [20]byte) error {
	_, span := e.tracer.Start(ctx, "rewards.Initialize")
	defer span.End()

	if caller != e.params.Admin {
		e.telemetry.ObserveRejection("initialize", "unauthorized")
		return ErrUnauthorized
	}
	if err := e.obtainCapabilities(caller); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	seeded := false
	err := e.store.Update(func(tx *state.Tx) error {
		initialized, err := tx.RewardsInitialized()
		if err != nil {
			return err
		}
		if initialized {
			return nil
		}
		for i, amount := range e.params.BootstrapSchedule {
			if err := tx.SetRewardsSchedule(uint64(i)+1, amount); err != nil {
				return err
			}
		}
		if err := tx.SetRewardsInitialized(); err != nil {
			return err
		}
		seeded = true
		return tx.AppendEvent(events.RewardsInitialized{
			Admin:  caller,
			Epochs: uint64(len(e.params.BootstrapSchedule)),
		}.Event())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("rewards: initialize: %w", err)
	}
	if seeded {
		e.log().Info("rewards schedule bootstrapped", slog.Int("epochs", len(e.params.BootstrapSchedule)))
	}
	return nil
}

func (e *Engine) obtainCapabilities(caller [20]byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.caps != nil {
		return nil
	}
	if e.partial.claim == nil {
		claimCap, err := e.deps.PreLaunch.IssueClaimCapability(caller)
		if err != nil {
			return fmt.Errorf("rewards: obtain claim capability: %w", err)
		}
		e.partial.claim = claimCap
	}
	if e.partial.mint == nil {
		mintCap, err := e.deps.Escrow.IssueMintCapability(caller)
		if err != nil {
			return fmt.Errorf("rewards: obtain mint capability: %w", err)
		}
		e.partial.mint = mintCap
	}
	caps := e.partial
	e.caps = &caps
	return nil
}

// RegisterEpoch closes the current epoch at endTime (unix seconds) and returns
// the closed epoch number.
func (e *Engine) RegisterEpoch(ctx context.Context, caller [20]byte, endTime uint64) (uint64, error) {
	_, span := e.tracer.Start(ctx, "rewards.RegisterEpoch")
	defer span.End()

	if caller != e.params.Admin {
		e.telemetry.ObserveRejection("register_epoch", "unauthorized")
		return 0, ErrUnauthorized
	}
	var closed uint64
	err := e.store.Update(func(tx *state.Tx) error {
		var err error
		closed, err = e.deps.Clock.RegisterEpoch(tx, caller, endTime)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	e.telemetry.SetCurrentEpoch(closed + 1)
	e.log().Info("epoch closed", slog.Uint64("epoch", closed), slog.Uint64("endTime", endTime))
	return closed, nil
}

// SetBlocked adds or removes addr from the claim block list.
func (e *Engine) SetBlocked(ctx context.Context, caller, addr [20]byte, blocked bool) error {
	_, span := e.tracer.Start(ctx, "rewards.SetBlocked")
	defer span.End()

	if caller != e.params.Admin {
		e.telemetry.ObserveRejection("set_blocked", "unauthorized")
		return ErrUnauthorized
	}
	return e.store.Update(func(tx *state.Tx) error {
		return e.deps.Gate.SetBlocked(tx, caller, addr, blocked)
	})
}

func (e *Engine) view(fn func(st Reader) error) error {
	return e.store.View(func(m *state.Manager) error {
		return fn(m)
	})
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrNoClaimable):
		return "no_claimable"
	case errors.Is(err, ErrClaimExpired):
		return "expired"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrInvariant):
		return "invariant"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	default:
		return "internal"
	}
}

func epochAttr(epoch uint64) attribute.KeyValue {
	return attribute.Int64("rewards.epoch", int64(epoch))
}
