package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "memberhub"

var (
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Payment notifications by outcome.",
	}, []string{"outcome"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders created and sent for prepay.",
	})

	Activations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_activations_total",
		Help:      "Memberships activated by open type.",
	}, []string{"open_type"})

	Commissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commission_events_total",
		Help:      "Commission processing by outcome.",
	}, []string{"outcome"})

	CommissionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commission_failures_total",
		Help:      "Commissions that failed or were dropped and need manual follow-up.",
	})

	Withdrawals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdraw_actions_total",
		Help:      "Withdraw applications and admin decisions.",
	}, []string{"action"})

	ReconciledOrders = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciled_orders_total",
		Help:      "Stale pending orders resolved by polling the gateway.",
	}, []string{"result"})
)

const (
	OutcomeSettled   = "settled"
	OutcomeDuplicate = "duplicate"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"

	CommissionCredited = "credited"
	CommissionSkipped  = "skipped"
	CommissionExisting = "existing"
	CommissionFailed   = "failed"
	CommissionDropped  = "dropped"
)

// RecordCommissionFailure counts a failed or dropped commission.
func RecordCommissionFailure(outcome string) {
	Commissions.WithLabelValues(outcome).Inc()
	CommissionFailures.Inc()
}
