package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldpay/internal/platform/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          "test-secret",
		MaxBodyBytes:       1 << 20,
		MaxUploadBytes:     10 << 20,
		RateLimitPerMinute: 60,
		MetricsEnabled:     true,
		TokenTTL:           time.Hour,
	}
}

func TestRouterProbes(t *testing.T) {
	router := NewApp(testConfig(), nil).Router()

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "healthz", method: http.MethodGet, path: "/healthz", status: http.StatusOK},
		{name: "readyz without db", method: http.MethodGet, path: "/readyz", status: http.StatusServiceUnavailable},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "api requires auth", method: http.MethodGet, path: "/api/v1/rates", status: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/tickets", status: http.StatusUnauthorized},
		{name: "unknown route", method: http.MethodGet, path: "/nope", status: http.StatusNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.name == "bad token" {
				req.Header.Set("Authorization", "Bearer not-a-token")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterSetsCommonHeaders(t *testing.T) {
	router := NewApp(testConfig(), nil).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestMetricsCanBeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	router := NewApp(cfg, nil).Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
