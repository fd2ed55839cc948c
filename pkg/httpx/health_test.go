package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/havenops/stockledger/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

type healthBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func probe(t *testing.T, checks ...httpx.HealthCheck) (int, healthBody) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks...).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	var body healthBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, body
}

func TestHealthHandler_AllHealthy(t *testing.T) {
	code, body := probe(t,
		httpx.HealthCheck{Name: "database", Checker: &stubChecker{}, Critical: true},
		httpx.HealthCheck{Name: "redis", Checker: &stubChecker{}},
		httpx.HealthCheck{Name: "event_bus", Checker: &stubChecker{}},
	)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Status != "ok" || body.Checks["database"] != "ok" || body.Checks["event_bus"] != "ok" {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestHealthHandler_CriticalDown(t *testing.T) {
	code, body := probe(t,
		httpx.HealthCheck{Name: "database", Checker: &stubChecker{err: errors.New("conn refused")}, Critical: true},
		httpx.HealthCheck{Name: "redis", Checker: &stubChecker{}},
	)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body.Status != "degraded" || body.Checks["database"] != "unreachable" || body.Checks["redis"] != "ok" {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestHealthHandler_OptionalDown(t *testing.T) {
	code, body := probe(t,
		httpx.HealthCheck{Name: "database", Checker: &stubChecker{}, Critical: true},
		httpx.HealthCheck{Name: "redis", Checker: &stubChecker{err: errors.New("timeout")}},
	)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Status != "degraded" || body.Checks["redis"] != "unreachable" {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestHealthHandler_Disabled(t *testing.T) {
	code, body := probe(t,
		httpx.HealthCheck{Name: "database", Checker: &stubChecker{}, Critical: true},
		httpx.HealthCheck{Name: "event_bus"},
	)
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("unexpected %d %+v", code, body)
	}
	if body.Checks["event_bus"] != "disabled" {
		t.Errorf("expected disabled, got %q", body.Checks["event_bus"])
	}
}
