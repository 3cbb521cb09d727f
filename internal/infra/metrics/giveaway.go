package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	rewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_rewards_granted_total",
			Help: "Rewards committed, labeled by kind (cinema/promo/guide).",
		},
		[]string{"kind"},
	)

	rewardRedeliveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giveaway_reward_redeliveries_total",
			Help: "Repeat submissions answered with the already-assigned reward.",
		},
	)

	allocationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "giveaway_allocation_failures_total",
			Help: "Allocation transactions rolled back due to storage errors.",
		},
	)

	submissionsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_submissions_rejected_total",
			Help: "Email submissions rejected before allocation, by reason.",
		},
		[]string{"reason"}, // invalid_email | not_confirmed | verifier_unavailable
	)

	adminOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_admin_operations_total",
			Help: "Admin panel operations, by operation name.",
		},
		[]string{"op"},
	)
)

func init() {
	register(rewardsGranted, rewardRedeliveries, allocationFailures, submissionsRejected, adminOps)
}

func ObserveRewardGranted(kind string) { rewardsGranted.WithLabelValues(kind).Inc() }

func ObserveRewardRedelivery() { rewardRedeliveries.Inc() }

func ObserveAllocationFailure() { allocationFailures.Inc() }

func ObserveSubmissionRejected(reason string) { submissionsRejected.WithLabelValues(reason).Inc() }

func ObserveAdminOp(op string) { adminOps.WithLabelValues(op).Inc() }
