package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldpay/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func loginRequest(email, remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remote
	return req
}

func TestRateLimitKeys(t *testing.T) {
	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "user-1", Role: auth.RoleTechnician})

	tests := []struct {
		name   string
		first  *http.Request
		second *http.Request
	}{
		{
			name:   "same user from two addresses",
			first:  withRemote(httptest.NewRequest(http.MethodPost, "/api/v1/imports/tickets", nil).WithContext(userCtx), "198.51.100.11:2222"),
			second: withRemote(httptest.NewRequest(http.MethodPost, "/api/v1/imports/tickets", nil).WithContext(userCtx), "198.51.100.12:3333"),
		},
		{
			name:   "anonymous falls back to ip",
			first:  loginRequest("a@example.com", "203.0.113.10:4444"),
			second: loginRequest("b@example.com", "203.0.113.10:5555"),
		},
		{
			name:   "forwarded for wins over remote addr",
			first:  withForwarded(httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil), "192.0.2.1, 10.0.0.1"),
			second: withForwarded(httptest.NewRequest(http.MethodGet, "/api/v1/rates", nil), "192.0.2.1"),
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			limited := RateLimit(1, time.Minute)(noContent)

			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, tc.first)
			if rec.Code != http.StatusNoContent {
				t.Fatalf("expected first request to pass, got %d", rec.Code)
			}
			rec = httptest.NewRecorder()
			limited.ServeHTTP(rec, tc.second)
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected second request to share the key, got %d", rec.Code)
			}
		})
	}
}

func withRemote(r *http.Request, addr string) *http.Request {
	r.RemoteAddr = addr
	return r
}

func withForwarded(r *http.Request, value string) *http.Request {
	r.Header.Set("X-Forwarded-For", value)
	return r
}

func TestLimiterWindowResetsOnClock(t *testing.T) {
	now := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)
	l := newLimiter(2, time.Minute, clientIPKey)
	l.now = func() time.Time { return now }

	for i, want := range []bool{true, true, false} {
		if ok, _, _ := l.take("k"); ok != want {
			t.Fatalf("hit %d: expected %v", i+1, want)
		}
	}
	now = now.Add(time.Minute)
	if ok, remaining, reset := l.take("k"); !ok || remaining != 1 || reset != time.Minute {
		t.Fatalf("expected fresh window, got ok=%v remaining=%d reset=%s", ok, remaining, reset)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)

	limited.ServeHTTP(httptest.NewRecorder(), loginRequest("a@example.com", "192.0.2.30:1234"))
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("a@example.com", "192.0.2.30:1234"))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected no remaining budget, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   routeClass
	}{
		{http.MethodPost, "/api/v1/auth/login", classLogin},
		{http.MethodPost, "/api/v1/imports/tickets", classMutation},
		{http.MethodPut, "/api/v1/rates/F006", classMutation},
		{http.MethodPatch, "/api/v1/users/u1", classMutation},
		{http.MethodPost, "/api/v1/truck-logs/2024-03-11/lock", classMutation},
		{http.MethodPut, "/api/v1/truck-logs/2024-03-11", classOpen},
		{http.MethodGet, "/api/v1/rates", classOpen},
		{http.MethodPost, "/api/v1/tickets", classOpen},
		{http.MethodPost, "/api/v1/imports/tickets/extra", classOpen},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if got := classify(httptest.NewRequest(tc.method, tc.path, nil)); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSensitiveMutationRateLimit(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard", nil)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "admin-1", Role: auth.RoleAdmin})
	for i, want := range []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile/week", nil).WithContext(userCtx)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("sensitive write %d: expected %d, got %d", i+1, want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("x@example.com", "192.0.2.50:1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("x@example.com", "192.0.2.51:1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected repeated login for one email to be throttled, got %d", rec.Code)
	}
}

func TestLimiterSweepsExpiredBuckets(t *testing.T) {
	now := time.Now()
	l := newLimiter(1, time.Minute, clientIPKey)
	l.buckets["stale"] = &bucket{count: 5, reset: now.Add(-time.Hour)}
	l.buckets["live"] = &bucket{count: 1, reset: now.Add(time.Minute)}

	l.sweep(now)

	if _, ok := l.buckets["stale"]; ok {
		t.Fatal("expected stale bucket removed")
	}
	if _, ok := l.buckets["live"]; !ok {
		t.Fatal("expected live bucket kept")
	}
}
