package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(adminOverridesTotal)
}

// Administrative overrides bypass the ledger; counting them keeps the bypass
// visible on the ops dashboard.
var adminOverridesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admin_overrides_total",
		Help: "Administrative subscription overrides by kind.",
	},
	[]string{"kind"}, // 'delete', 'extend_expiry', 'correction'
)

func IncAdminOverride(kind string) {
	adminOverridesTotal.WithLabelValues(kind).Inc()
}
