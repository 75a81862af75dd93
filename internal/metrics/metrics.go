package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	Evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_engine",
		Name:      "evaluations_total",
		Help:      "Checkout evaluations performed.",
	})

	Applications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_engine",
		Name:      "applications_total",
		Help:      "Checkouts that applied at least one deal.",
	})

	DiscountGranted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_engine",
		Name:      "discount_granted_total",
		Help:      "Monetary discount granted, in currency units.",
	})

	ExhaustedConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promo_engine",
		Name:      "exhausted_conflicts_total",
		Help:      "Apply attempts that lost the usage-cap race.",
	})
)
