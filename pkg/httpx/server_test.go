package httpx_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/havenops/stockledger/pkg/httpx"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(cfg httpx.ServerConfig) http.Handler {
	r := httpx.NewRouter(cfg, passthrough, passthrough, passthrough, passthrough)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httpx.JSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestRouter_SecurityHeaders(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{CORSAllowedOrigins: "https://ops.example.com"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	var body httpx.Envelope
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{RequestsPerMinute: 2})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.RemoteAddr = "198.51.100.4:5555"
		h.ServeHTTP(last, req)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", last.Code)
	}
	if !strings.Contains(last.Body.String(), `"success":false`) {
		t.Errorf("expected envelope, got %q", last.Body.String())
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	h := newTestRouter(httpx.ServerConfig{MaxBodyBytes: 10})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 11))))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestCORSMiddleware_Credentials(t *testing.T) {
	preflight := func(origins string) http.Header {
		h := httpx.CORSMiddleware(origins)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		req := httptest.NewRequest(http.MethodOptions, "/api/inventory", http.NoBody)
		req.Header.Set("Origin", "https://ops.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Header()
	}

	explicit := preflight("https://ops.example.com, http://localhost:3000")
	if explicit.Get("Access-Control-Allow-Origin") != "https://ops.example.com" {
		t.Errorf("unexpected allow-origin %q", explicit.Get("Access-Control-Allow-Origin"))
	}
	if explicit.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("explicit origins should allow credentials")
	}

	if preflight("*").Get("Access-Control-Allow-Credentials") == "true" {
		t.Errorf("wildcard origin must not allow credentials")
	}
}

func TestNewServer_WriteTimeoutOutlastsHandler(t *testing.T) {
	srv := httpx.NewServer(":0", http.NotFoundHandler(), 10*time.Second)
	if srv.WriteTimeout <= 10*time.Second {
		t.Fatalf("write timeout %v should exceed request timeout", srv.WriteTimeout)
	}
}
