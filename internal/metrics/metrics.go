package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OAuth Metrics
var (
	// OAuthExchangesTotal tracks authorization code exchanges by result
	OAuthExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_exchanges_total",
			Help: "Total authorization code exchanges by result (success/provider_error/transport_error)",
		},
		[]string{"result"},
	)

	// TokenRefreshesTotal tracks token refresh attempts by result
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_refreshes_total",
			Help: "Total token refresh attempts by result (success/rejected/transport_error)",
		},
		[]string{"result"},
	)
)

// Subscriber Fetch Metrics
var (
	// SubscriberFetchesTotal tracks subscriber count fetches by result
	SubscriberFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriber_fetches_total",
			Help: "Total subscriber count fetches by result (success/retried/failed/no_credential)",
		},
		[]string{"result"},
	)

	// SubscriberFetchDuration tracks subscriber count fetch latency
	SubscriberFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subscriber_fetch_duration_seconds",
			Help:    "Subscriber count fetch duration in seconds, including refresh retries",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// CountCacheHits tracks subscriber count cache hits
	CountCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriber_count_cache_hits_total",
			Help: "Total number of subscriber count cache hits",
		},
	)

	// CountCacheMisses tracks subscriber count cache misses
	CountCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriber_count_cache_misses_total",
			Help: "Total number of subscriber count cache misses",
		},
	)

	// CountCacheSize tracks current number of entries in the count cache
	CountCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriber_count_cache_entries",
			Help: "Current number of entries in the subscriber count cache",
		},
	)

	// CountCacheEvictions tracks number of expired count entries evicted
	CountCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriber_count_cache_evictions_total",
			Help: "Total number of expired subscriber count cache entries evicted",
		},
	)
)

// Credential Metrics
var (
	// CredentialCacheSize tracks number of credentials held in memory
	CredentialCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "credential_cache_entries",
			Help: "Current number of credentials held in the in-memory cache",
		},
	)

	// CredentialUpsertsTotal tracks credential writes by status
	CredentialUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_upserts_total",
			Help: "Total credential upserts by status (success/error)",
		},
		[]string{"status"},
	)
)

// Goal Metrics
var (
	// GoalUpdatesTotal tracks goal updates applied via the API
	GoalUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goal_updates_total",
			Help: "Total number of goal updates applied",
		},
	)
)

// Redis Operations Metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)

// HTTP Error Metrics
// Note: http_errors_total{type} is provided by internal/errors package
