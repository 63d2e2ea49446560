package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga_ledger",
			Name:      "transfers_total",
			Help:      "Transfers by outcome",
		},
		[]string{"environment", "outcome"},
	)

	RollbackAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga_ledger",
			Name:      "rollback_attempts_total",
			Help:      "Compensating credits attempted on the sender",
		},
		[]string{"environment", "result"},
	)

	RollbackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga_ledger",
			Name:      "rollback_failed_total",
			Help:      "Transfers left debited because every rollback attempt failed",
		},
		[]string{"environment"},
	)

	TransferLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gojenga_ledger",
			Name:      "transfer_duration_seconds",
			Help:      "End-to-end transfer latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"environment"},
	)

	EventsPublishFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gojenga_ledger",
			Name:      "events_publish_failed_total",
			Help:      "Ledger events that could not be handed to the producer or were not delivered",
		},
		[]string{"type"},
	)
)

const (
	OutcomeCompleted      = "completed"
	OutcomeRejected       = "rejected"
	OutcomeRolledBack     = "rolled_back"
	OutcomeRollbackFailed = "rollback_failed"
)
