package metrics

import (
	"isp-subscription-billing/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsExpiredTotal,
		subscriptionsTotal,
		renewalsTotal,
	)
}

var (
	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions marked expired by the reconciliation worker.",
		},
	)

	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscriptions by derived status.",
		},
		[]string{"status"}, // 'pending', 'active', 'expired'
	)

	renewalsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscription_renewals_total",
			Help: "Total number of paid renewals recorded.",
		},
	)
)

func IncSubscriptionsExpired(count int64) {
	subscriptionsExpiredTotal.Add(float64(count))
}

func IncRenewals() {
	renewalsTotal.Inc()
}

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusPending,
		model.SubscriptionStatusActive,
		model.SubscriptionStatusExpired,
	}
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
