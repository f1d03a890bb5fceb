package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for auth operation metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics holds the auth counters. A nil *Metrics records nothing.
type Metrics struct {
	Operations        *prometheus.CounterVec
	RevocationsPurged prometheus.Counter
}

// NewMetrics creates the auth metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vaultguard_auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		RevocationsPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vaultguard_revocations_purged_total",
				Help: "Total number of expired revocation records removed by housekeeping",
			},
		),
	}

	reg.MustRegister(m.Operations)
	reg.MustRegister(m.RevocationsPurged)

	return m
}

// observe records one operation. Known auth failures count as "failure",
// anything else that went wrong as "error".
func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcomeOf(err)).Inc()
}

func (m *Metrics) purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.RevocationsPurged.Add(float64(n))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrRevokedToken),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrInvalidRequest):
		return OutcomeFailure
	default:
		return OutcomeError
	}
}
