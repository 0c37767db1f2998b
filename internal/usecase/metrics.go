package usecase

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/labtrack/labtrack/internal/domain"
)

var (
	// operationsTotal counts use case calls.
	// Labels: operation, outcome (ok, validation, not_found, ...)
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "labtrack",
		Subsystem: "usecase",
		Name:      "operations_total",
		Help:      "Use case operations by outcome",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "labtrack",
		Subsystem: "usecase",
		Name:      "operation_duration_seconds",
		Help:      "Use case latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	auditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "labtrack",
		Subsystem: "audit",
		Name:      "failures_total",
		Help:      "Audit entries that could not be stored",
	})

	bookingConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "labtrack",
		Subsystem: "booking",
		Name:      "conflicts_total",
		Help:      "Bookings rejected because of an overlapping reservation",
	})

	bookingRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "labtrack",
		Subsystem: "booking",
		Name:      "retries_total",
		Help:      "Booking transactions retried after a serialization failure",
	})
)

// observe records one finished operation. Call as
// defer observe("op", time.Now(), &err).
func observe(operation string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	operationsTotal.WithLabelValues(operation, outcome(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	var (
		ve  *domain.ValidationError
		nf  *domain.NotFoundError
		dup *domain.DuplicateKeyError
		ite *domain.InvalidTransitionError
		ce  *domain.ConflictError
		fe  *domain.ForbiddenOperationError
		se  *domain.StorageError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "validation"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &dup):
		return "duplicate"
	case errors.As(err, &ite):
		return "invalid_transition"
	case errors.As(err, &ce):
		return "conflict"
	case errors.As(err, &fe):
		return "forbidden"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return "confirmation_required"
	case errors.As(err, &se):
		return "storage"
	default:
		return "error"
	}
}
