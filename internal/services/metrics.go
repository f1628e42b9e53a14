package services

import (
	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	workflowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budget",
		Subsystem: "workflow",
		Name:      "transitions_total",
		Help:      "Committed request transitions broken down by source and target status.",
	}, []string{"from", "to"})

	workflowRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budget",
		Subsystem: "workflow",
		Name:      "rejections_total",
		Help:      "Rejected workflow operations broken down by error kind.",
	}, []string{"operation", "kind"})

	notificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "budget",
		Subsystem: "notifications",
		Name:      "dispatched_total",
		Help:      "Recorded notifications broken down by severity.",
	}, []string{"severity"})

	anomalyFlags = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "budget",
		Subsystem: "anomaly",
		Name:      "flags",
		Help:      "Anomaly flags found by the most recent full evaluation, by type.",
	}, []string{"type"})
)

func recordTransition(from, to models.Status) {
	workflowTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func recordNotification(sev models.Severity) {
	notificationsDispatched.WithLabelValues(string(sev)).Inc()
}

func recordRejection(operation string, err error) {
	workflowRejections.WithLabelValues(operation, errorKind(err)).Inc()
}

func recordAnomalies(flags []models.AnomalyFlag) {
	counts := map[models.AnomalyType]int{
		models.AnomalyHighCost:         0,
		models.AnomalyDuplicateReceipt: 0,
	}
	for _, f := range flags {
		counts[f.Type]++
	}
	for t, n := range counts {
		anomalyFlags.WithLabelValues(string(t)).Set(float64(n))
	}
}

func errorKind(err error) string {
	switch {
	case domain.IsInvalidTransition(err):
		return "invalid_transition"
	case domain.IsUnauthorized(err):
		return "unauthorized"
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
