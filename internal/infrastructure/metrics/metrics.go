package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal entry metrics
	EntriesPosted   *prometheus.CounterVec
	EntriesReversed prometheus.Counter
	EntriesRejected *prometheus.CounterVec
	EntryDuration   prometheus.Histogram
	EntryLineCount  prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter

	// Period metrics
	PeriodsLocked   prometheus.Counter
	PeriodsUnlocked prometheus.Counter
	LockOverrides   prometheus.Counter

	// Opening balance metrics
	OpeningBalancesPosted prometheus.Counter
	OpeningBalancesFailed prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsPending   prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Journal entry metrics
		EntriesPosted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_entries_posted_total",
				Help: "Total number of journal entries posted by type",
			},
			[]string{"type"},
		),
		EntriesReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_entries_reversed_total",
			Help: "Total number of journal entries reversed",
		}),
		EntriesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_entries_rejected_total",
				Help: "Total number of rejected postings by reason",
			},
			[]string{"reason"},
		),
		EntryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tallybooks_entry_duration_seconds",
			Help:    "Duration of posting operations",
			Buckets: prometheus.DefBuckets,
		}),
		EntryLineCount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tallybooks_entry_line_count",
			Help:    "Number of lines per posted entry",
			Buckets: []float64{2, 3, 4, 6, 8, 12, 20, 50},
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_accounts_created_total",
			Help: "Total number of accounts created",
		}),

		// Period metrics
		PeriodsLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_periods_locked_total",
			Help: "Total number of period lock operations",
		}),
		PeriodsUnlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_periods_unlocked_total",
			Help: "Total number of period unlock operations",
		}),
		LockOverrides: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_lock_overrides_total",
			Help: "Total number of postings into locked periods via override",
		}),

		// Opening balance metrics
		OpeningBalancesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_opening_balances_posted_total",
			Help: "Total number of opening balances posted",
		}),
		OpeningBalancesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_opening_balances_failed_total",
			Help: "Total number of opening balances that failed to post",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tallybooks_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tallybooks_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tallybooks_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tallybooks_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tallybooks_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tallybooks_events_pending",
			Help: "Current number of unpublished outbox events",
		}),
	}
}
