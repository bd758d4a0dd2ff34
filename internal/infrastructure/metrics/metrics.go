package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	MovementsApplied       *prometheus.CounterVec
	MovementsReversed      prometheus.Counter
	InitialDepositsSkipped prometheus.Counter
	MovementDuration       *prometheus.HistogramVec
	MovementAmount         *prometheus.HistogramVec
	LedgerErrors           *prometheus.CounterVec

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountsClosed    prometheus.Counter
	AccountOperations *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		MovementsApplied: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_movements_applied_total",
				Help: "Total number of movements applied by kind",
			},
			[]string{"kind"},
		),
		MovementsReversed: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_movements_reversed_total",
			Help: "Total number of movements reversed",
		}),
		InitialDepositsSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_initial_deposits_skipped_total",
			Help: "Initial deposits recorded without crediting the balance",
		}),
		MovementDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_movement_duration_seconds",
				Help:    "Duration of ledger write operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		MovementAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_movement_amount",
				Help:    "Movement amounts by kind",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"kind"},
		),
		LedgerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_ledger_errors_total",
				Help: "Total number of ledger errors by type",
			},
			[]string{"operation", "error_type"},
		),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsClosed: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_closed_total",
			Help: "Total number of accounts deactivated",
		}),
		AccountOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_account_cache_lookups_total",
				Help: "Account cache lookups by result",
			},
			[]string{"result"},
		),

		OutboxPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_outbox_errors_total",
			Help: "Total outbox publish failures",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bankledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "bankledger_db_connections",
			Help: "Current number of acquired database connections",
		}),
		DBErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
