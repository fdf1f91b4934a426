package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts planner operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meal_prep_operations_total",
			Help: "Total number of meal prep operations",
		},
		[]string{"operation", "status"},
	)

	// OperationDuration tracks how long operations take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meal_prep_operation_duration_seconds",
			Help:    "Duration of meal prep operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	// UnfilledSlotsTotal counts plan slots left empty because no recipe fit.
	UnfilledSlotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meal_prep_unfilled_slots_total",
			Help: "Total number of meal plan slots that could not be filled",
		},
	)

	// PantryItems tracks the pantry size of each owner as last loaded.
	PantryItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meal_prep_pantry_items",
			Help: "Number of user pantry items per owner",
		},
		[]string{"owner"},
	)
)

// Observe records the outcome and duration of an operation.
func Observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
