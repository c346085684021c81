package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the Argan backend.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Account lifecycle metrics.
	RegistrationsTotal  prometheus.Counter
	VerificationsTotal  *prometheus.CounterVec
	PasswordResetsTotal *prometheus.CounterVec
	EmailsSentTotal     *prometheus.CounterVec

	// Auth metrics.
	LoginFailuresTotal  prometheus.Counter
	LoginSuccessesTotal prometheus.Counter

	// Rate limit and quota metrics.
	RateLimitRejectionsTotal prometheus.Counter
	TeamQuotaRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argan_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "argan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		RegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argan_registrations_total",
			Help: "Total number of successful registrations.",
		}),

		VerificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argan_email_verifications_total",
			Help: "Total number of email verification attempts.",
		}, []string{"status"}),

		PasswordResetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argan_password_resets_total",
			Help: "Total number of password reset attempts.",
		}, []string{"status"}),

		EmailsSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "argan_emails_sent_total",
			Help: "Total number of transactional emails dispatched.",
		}, []string{"template"}),

		LoginFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argan_login_failures_total",
			Help: "Total number of failed login attempts.",
		}),

		LoginSuccessesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argan_login_successes_total",
			Help: "Total number of successful logins.",
		}),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argan_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}),

		TeamQuotaRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "argan_team_quota_rejections_total",
			Help: "Total number of team creations rejected by the quota.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "argan_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.VerificationsTotal,
		m.PasswordResetsTotal,
		m.EmailsSentTotal,
		m.LoginFailuresTotal,
		m.LoginSuccessesTotal,
		m.RateLimitRejectionsTotal,
		m.TeamQuotaRejectionsTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// IncLoginFailure increments the failed login counter.
func (m *Metrics) IncLoginFailure() {
	m.LoginFailuresTotal.Inc()
}

// IncLoginSuccess increments the successful login counter.
func (m *Metrics) IncLoginSuccess() {
	m.LoginSuccessesTotal.Inc()
}

// IncRegistration increments the registration counter.
func (m *Metrics) IncRegistration() {
	m.RegistrationsTotal.Inc()
}

// IncVerification increments the verification attempt counter.
func (m *Metrics) IncVerification(status string) {
	m.VerificationsTotal.WithLabelValues(status).Inc()
}

// IncPasswordReset increments the password reset attempt counter.
func (m *Metrics) IncPasswordReset(status string) {
	m.PasswordResetsTotal.WithLabelValues(status).Inc()
}

// IncEmailSent increments the dispatched email counter for a template.
func (m *Metrics) IncEmailSent(template string) {
	m.EmailsSentTotal.WithLabelValues(template).Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}

// IncTeamQuotaRejection increments the team quota rejection counter.
func (m *Metrics) IncTeamQuotaRejection() {
	m.TeamQuotaRejectionsTotal.Inc()
}
