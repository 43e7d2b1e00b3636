package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" && lp.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecordLogin_CountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(ResultSuccess)
	c.RecordLogin(ResultSuccess)
	c.RecordLogin(ResultFailure)

	if got := counterValue(t, reg, "gophauth_logins_total", ResultSuccess); got != 2 {
		t.Errorf("success logins = %v, want 2", got)
	}
	if got := counterValue(t, reg, "gophauth_logins_total", ResultFailure); got != 1 {
		t.Errorf("failed logins = %v, want 1", got)
	}
}

func TestRecordRegistrationAndTokens(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration(ResultDuplicate)
	c.RecordTokenVerification(ResultInvalid)
	c.RecordTokenVerification(ResultInvalid)

	if got := counterValue(t, reg, "gophauth_registrations_total", ResultDuplicate); got != 1 {
		t.Errorf("duplicate registrations = %v, want 1", got)
	}
	if got := counterValue(t, reg, "gophauth_token_verifications_total", ResultInvalid); got != 2 {
		t.Errorf("invalid tokens = %v, want 2", got)
	}
}

func TestRecordHashLatency_Observes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHashLatency(30 * time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == "gophauth_password_hash_seconds" {
			if n := mf.GetMetric()[0].GetHistogram().GetSampleCount(); n != 1 {
				t.Fatalf("sample count = %d, want 1", n)
			}
			return
		}
	}
	t.Fatal("gophauth_password_hash_seconds metric not found")
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordHTTPStatus(http.StatusUnauthorized)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `gophauth_http_requests_total{status_code="401"} 1`) {
		t.Errorf("response missing http counter:\n%s", body)
	}
}
