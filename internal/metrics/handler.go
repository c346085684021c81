package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Summary is the JSON response for the metrics endpoint.
type Summary struct {
	HTTP      httpSummary   `json:"http"`
	Accounts  accountsInfo  `json:"accounts"`
	Auth      authInfo      `json:"auth"`
	RateLimit rateLimitInfo `json:"rateLimit"`
	Teams     teamsInfo     `json:"teams"`
	DB        dbInfo        `json:"db"`
	Server    serverInfo    `json:"server"`
}

type httpSummary struct {
	TotalRequests float64 `json:"totalRequests"`
	ErrorRate     float64 `json:"errorRate"`
}

type accountsInfo struct {
	Registrations float64 `json:"registrations"`
	Verifications float64 `json:"verifications"`
	Resets        float64 `json:"resets"`
	EmailsSent    float64 `json:"emailsSent"`
}

type authInfo struct {
	LoginFailures  float64 `json:"loginFailures"`
	LoginSuccesses float64 `json:"loginSuccesses"`
}

type rateLimitInfo struct {
	Rejections float64 `json:"rejections"`
}

type teamsInfo struct {
	QuotaRejections float64 `json:"quotaRejections"`
}

type dbInfo struct {
	TotalConns    float64 `json:"totalConns"`
	IdleConns     float64 `json:"idleConns"`
	AcquiredConns float64 `json:"acquiredConns"`
}

type serverInfo struct {
	StartTime     float64 `json:"startTime"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// Handler returns an http.HandlerFunc that serves a JSON metrics summary.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.handleSummary(w)
	}
}

func (m *Metrics) handleSummary(w http.ResponseWriter) {
	families, err := m.registry.Gather()
	if err != nil {
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}

	fam := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		fam[f.GetName()] = f
	}

	start := gaugeValue(fam["argan_server_start_time_seconds"])

	summary := Summary{
		HTTP: httpSummary{
			TotalRequests: sumCounter(fam["argan_http_requests_total"]),
			ErrorRate:     computeErrorRate(fam["argan_http_requests_total"]),
		},
		Accounts: accountsInfo{
			Registrations: sumCounter(fam["argan_registrations_total"]),
			Verifications: sumCounter(fam["argan_email_verifications_total"]),
			Resets:        sumCounter(fam["argan_password_resets_total"]),
			EmailsSent:    sumCounter(fam["argan_emails_sent_total"]),
		},
		Auth: authInfo{
			LoginFailures:  sumCounter(fam["argan_login_failures_total"]),
			LoginSuccesses: sumCounter(fam["argan_login_successes_total"]),
		},
		RateLimit: rateLimitInfo{
			Rejections: sumCounter(fam["argan_ratelimit_rejections_total"]),
		},
		Teams: teamsInfo{
			QuotaRejections: sumCounter(fam["argan_team_quota_rejections_total"]),
		},
		DB: dbInfo{
			TotalConns:    gaugeValue(fam["argan_db_pool_total_conns"]),
			IdleConns:     gaugeValue(fam["argan_db_pool_idle_conns"]),
			AcquiredConns: gaugeValue(fam["argan_db_pool_acquired_conns"]),
		},
		Server: serverInfo{
			StartTime:     start,
			UptimeSeconds: float64(time.Now().Unix()) - start,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	_ = json.NewEncoder(w).Encode(summary)
}

// --- Prometheus metric helpers ---

func sumCounter(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() != nil {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func gaugeValue(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	ms := f.GetMetric()
	if len(ms) == 0 {
		return 0
	}
	if ms[0].GetGauge() != nil {
		return ms[0].GetGauge().GetValue()
	}
	return 0
}

func computeErrorRate(f *dto.MetricFamily) float64 {
	if f == nil {
		return 0
	}
	var total, errors float64
	for _, m := range f.GetMetric() {
		if m.GetCounter() == nil {
			continue
		}
		v := m.GetCounter().GetValue()
		total += v
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "status_code" {
				code := lp.GetValue()
				if len(code) > 0 && code[0] >= '4' {
					errors += v
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return errors / total
}
