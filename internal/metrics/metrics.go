package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// Authentication metrics
	LoginAttempts   *prometheus.CounterVec // by status (success/failure/locked)
	UsersCreated    prometheus.Counter
	TokenRefreshes  *prometheus.CounterVec // by status
	AccountLockouts prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge

	// Security metrics
	RateLimitHits     *prometheus.CounterVec
	CSRFFailures      prometheus.Counter
	InvalidTokens     prometheus.Counter
	TokenBindingFails prometheus.Counter
	PermissionDenials *prometheus.CounterVec

	// Production metrics
	ProductionDeclarations prometheus.Counter
	NonConformitySync      *prometheus.CounterVec // by action (created/updated/deleted)
	CauseDeclarations      *prometheus.CounterVec // by result (accepted/rejected)
	Exports                *prometheus.CounterVec // by kind (planification/stats)

	// System metrics
	DatabaseConnections prometheus.Gauge
	BackgroundTasks     *prometheus.GaugeVec
	JobRuns             *prometheus.CounterVec // by job and status
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts by status (success, failure, locked)",
		}, []string{"status"}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_users_created_total",
			Help: "Total number of user accounts created by administrators or bootstrap",
		}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_refreshes_total",
			Help: "Total number of token refresh operations by status",
		}, []string{"status"}),
		AccountLockouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "auth_account_lockouts_total",
			Help: "Total number of account lockouts due to failed login attempts",
		}),

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, path, and status code",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request latency in seconds",
			// 10ms to 10s, exports sit in the upper buckets
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Current number of active HTTP connections",
		}),

		RateLimitHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "security_rate_limit_hits_total",
			Help: "Total number of rate limit violations by endpoint",
		}, []string{"endpoint"}),
		CSRFFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "security_csrf_failures_total",
			Help: "Total number of CSRF validation failures",
		}),
		InvalidTokens: factory.NewCounter(prometheus.CounterOpts{
			Name: "security_invalid_tokens_total",
			Help: "Total number of invalid or expired JWT token attempts",
		}),
		TokenBindingFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "security_token_binding_failures_total",
			Help: "Total number of token binding verification failures (IP/UA mismatch)",
		}),
		PermissionDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "security_permission_denials_total",
			Help: "Total number of permission check failures by permission type",
		}, []string{"permission"}),

		ProductionDeclarations: factory.NewCounter(prometheus.CounterOpts{
			Name: "production_declarations_total",
			Help: "Total number of production quantities declared on planifications",
		}),
		NonConformitySync: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nonconformity_sync_total",
			Help: "Non-conformities created, updated or deleted after a deltaProd change",
		}, []string{"action"}),
		CauseDeclarations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cause_declarations_total",
			Help: "7M cause declarations by result (accepted, rejected)",
		}, []string{"result"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Excel workbooks generated by kind",
		}, []string{"kind"}),

		DatabaseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Current number of active database connections",
		}),
		BackgroundTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "background_tasks_status",
			Help: "Status of background tasks (1=running, 0=stopped)",
		}, []string{"task_name"}),
		JobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jobs_runs_total",
			Help: "Scheduled job executions by job and status (success, failure)",
		}, []string{"job", "status"}),
	}
}

// RecordLoginAttempt records a login attempt with the given status.
func (m *Metrics) RecordLoginAttempt(status string) {
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordUserCreated increments the created accounts counter.
func (m *Metrics) RecordUserCreated() {
	m.UsersCreated.Inc()
}

// RecordTokenRefresh records a token refresh operation.
// Status can be: "success" or "invalid"
func (m *Metrics) RecordTokenRefresh(status string) {
	m.TokenRefreshes.WithLabelValues(status).Inc()
}

// RecordAccountLockout increments the account lockout counter.
func (m *Metrics) RecordAccountLockout() {
	m.AccountLockouts.Inc()
}

// RecordHTTPRequest records an HTTP request with method, path, and status code.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(statusCode)).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// RecordRateLimitHit records a rate limit violation for a specific endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) RecordCSRFFailure() {
	m.CSRFFailures.Inc()
}

func (m *Metrics) RecordInvalidToken() {
	m.InvalidTokens.Inc()
}

func (m *Metrics) RecordTokenBindingFailure() {
	m.TokenBindingFails.Inc()
}

// RecordPermissionDenial increments permission denial counter / Incrémente le compteur de refus de permission
func (m *Metrics) RecordPermissionDenial(permission string) {
	m.PermissionDenials.WithLabelValues(permission).Inc()
}

// RecordProductionDeclaration counts a declared production / Compte une déclaration de production
func (m *Metrics) RecordProductionDeclaration() {
	m.ProductionDeclarations.Inc()
}

// RecordNonConformitySync counts a non-conformity sync action (created, updated, deleted).
func (m *Metrics) RecordNonConformitySync(action string) {
	m.NonConformitySync.WithLabelValues(action).Inc()
}

// RecordCauseDeclaration counts a 7M declaration by result (accepted, rejected).
func (m *Metrics) RecordCauseDeclaration(result string) {
	m.CauseDeclarations.WithLabelValues(result).Inc()
}

// RecordExport counts a generated workbook / Compte un classeur généré
func (m *Metrics) RecordExport(kind string) {
	m.Exports.WithLabelValues(kind).Inc()
}

// UpdateDatabaseConnections updates the database connections gauge.
func (m *Metrics) UpdateDatabaseConnections(count int) {
	m.DatabaseConnections.Set(float64(count))
}

// SetBackgroundTaskStatus sets the status of a background task.
func (m *Metrics) SetBackgroundTaskStatus(taskName string, running bool) {
	status := 0.0
	if running {
		status = 1.0
	}
	m.BackgroundTasks.WithLabelValues(taskName).Set(status)
}

// RecordJobRun counts a scheduled job execution / Compte une exécution de tâche planifiée
func (m *Metrics) RecordJobRun(job string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.JobRuns.WithLabelValues(job, status).Inc()
}

// statusCodeToString keeps label cardinality bounded / Limite la cardinalité des labels
func statusCodeToString(code int) string {
	switch code {
	case 200, 201, 204, 400, 401, 403, 404, 409, 429, 500, 503:
		return strconv.Itoa(code)
	}
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	}
	return "unknown"
}
