package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SalesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sales_created_total",
			Help: "Sales recorded together with their commissions",
		},
	)
	SaleFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_create_failures_total",
			Help: "Sale creations that did not commit, by error kind",
		},
		[]string{"kind"},
	)
	CommissionsPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commissions_paid_amount_total",
			Help: "Sum of commission amounts recorded, by chain level",
		},
		[]string{"level"},
	)
	SaleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sale_create_duration_seconds",
			Help:    "Time to validate, compute and persist a sale",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(SalesCreated)
	prometheus.MustRegister(SaleFailures)
	prometheus.MustRegister(CommissionsPaid)
	prometheus.MustRegister(SaleDuration)
}
