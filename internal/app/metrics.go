package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Closure reasons used as metric labels.
const (
	reasonManual         = "manual"
	reasonOrderCompleted = "order_completed"
	reasonAbsence        = "absence"
)

var (
	assignmentsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "assignments_closed_total",
			Help:      "Assignments closed, by reason.",
		},
		[]string{"reason"},
	)

	durationFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "duration_fallback_total",
			Help:      "Durations computed as naive elapsed time because the calendar was unavailable.",
		},
		[]string{"cause"},
	)

	ordersTerminatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "orders_terminated_total",
			Help:      "Orders that reached their effective target.",
		},
	)

	absenceFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "absence_closure_failures_total",
			Help:      "Assignments an absence cascade could not close.",
		},
	)

	auditDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "atelier",
			Name:      "audit_deliveries_total",
			Help:      "Audit events handed to the sink, by result.",
		},
		[]string{"result"},
	)
)
