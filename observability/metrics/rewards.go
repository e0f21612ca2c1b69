package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// RewardsMetrics tracks accrual and claim activity of the rewards engine.
type RewardsMetrics struct {
	pointsAccrued  prometheus.Counter
	claims         *prometheus.CounterVec
	claimedAmount  *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	currentEpoch   prometheus.Gauge
	scheduleWrites prometheus.Counter
}

var (
	rewardsOnce     sync.Once
	rewardsRegistry *RewardsMetrics
)

// Rewards returns the process-wide rewards metrics, registering them with the
// default prometheus registry on first use.
func Rewards() *RewardsMetrics {
	rewardsOnce.Do(func() {
		rewardsRegistry = &RewardsMetrics{
			pointsAccrued: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "rewards_points_accrued_total",
				Help: "Points accrued across all epochs.",
			}),
			claims: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_claims_total",
				Help: "Settled claims by payout route.",
			}, []string{"route"}),
			claimedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_claimed_amount_total",
				Help: "Reward value paid out by payout route.",
			}, []string{"route"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "rewards_rejections_total",
				Help: "Rejected ledger operations by operation and reason.",
			}, []string{"operation", "reason"}),
			currentEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "rewards_current_epoch",
				Help: "Epoch currently targeted by accruals.",
			}),
			scheduleWrites: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "rewards_schedule_updates_total",
				Help: "Administrator writes to the reward schedule.",
			}),
		}
		prometheus.MustRegister(
			rewardsRegistry.pointsAccrued,
			rewardsRegistry.claims,
			rewardsRegistry.claimedAmount,
			rewardsRegistry.rejections,
			rewardsRegistry.currentEpoch,
			rewardsRegistry.scheduleWrites,
		)
	})
	return rewardsRegistry
}

func (m *RewardsMetrics) ObserveAccrual(amount uint64) {
	if m == nil {
		return
	}
	m.pointsAccrued.Add(float64(amount))
}

func (m *RewardsMetrics) ObserveClaim(route string, amount uint64) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.claims.WithLabelValues(route).Inc()
	m.claimedAmount.WithLabelValues(route).Add(float64(amount))
}

func (m *RewardsMetrics) ObserveRejection(operation, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	m.rejections.WithLabelValues(operation, reason).Inc()
}

func (m *RewardsMetrics) SetCurrentEpoch(epoch uint64) {
	if m == nil {
		return
	}
	m.currentEpoch.Set(float64(epoch))
}

func (m *RewardsMetrics) ObserveScheduleUpdate() {
	if m == nil {
		return
	}
	m.scheduleWrites.Inc()
}
