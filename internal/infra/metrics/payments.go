package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsRecordedTotal,
		revenueRunRate,
	)
}

var (
	paymentsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total ledger rows written, by payment method.",
		},
		[]string{"method"},
	)

	revenueRunRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "billing_revenue_run_rate",
			Help: "Sum of current package prices across live subscriptions, in minor currency units.",
		},
	)
)

func IncPaymentsRecorded(method string) {
	paymentsRecordedTotal.WithLabelValues(method).Inc()
}

func SetRevenueRunRate(amount int64) {
	revenueRunRate.Set(float64(amount))
}
