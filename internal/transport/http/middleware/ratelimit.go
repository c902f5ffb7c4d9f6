package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"fieldpay/internal/transport/http/api"
)

const maxTrackedClients = 10000

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.keyFn = fn
		}
	}
}

// RateLimit allows limit requests per key in each fixed window. The key is
// the signed-in user, else the client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(l)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type routeClass int

const (
	classOpen routeClass = iota
	classLogin
	classMutation
)

// sensitiveRoutes are writes that are costly (uploads, reprices) or touch
// money and accounts. Paths are relative to /api/v1.
var sensitiveRoutes = []struct {
	prefix string
	suffix string
	exact  bool
	class  routeClass
}{
	{prefix: "/auth/login", exact: true, class: classLogin},
	{prefix: "/imports/tickets", exact: true, class: classMutation},
	{prefix: "/reconcile/week", exact: true, class: classMutation},
	{prefix: "/jobs/reprice", exact: true, class: classMutation},
	{prefix: "/users", exact: true, class: classMutation},
	{prefix: "/users/", class: classMutation},
	{prefix: "/rates/", class: classMutation},
	{prefix: "/truck-logs/", suffix: "/lock", class: classMutation},
}

func classify(r *http.Request) routeClass {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return classOpen
	}
	path := apiPath(r.URL.Path)
	for _, route := range sensitiveRoutes {
		if route.exact && path != route.prefix {
			continue
		}
		if !strings.HasPrefix(path, route.prefix) || !strings.HasSuffix(path, route.suffix) {
			continue
		}
		return route.class
	}
	return classOpen
}

// SensitiveMutationRateLimit layers tighter budgets over sensitiveRoutes:
// login gets a quarter of baseLimit per IP and per email, other sensitive
// writes half of it per user.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginByIP := newLimiter(max(baseLimit/4, 1), window, clientIPKey)
	loginByEmail := newLimiter(max(baseLimit/4, 1), window, AuthEmailOrIPKey("email"))
	writes := newLimiter(max(baseLimit/2, 1), window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch classify(r) {
			case classLogin:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case classMutation:
				if !writes.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type bucket struct {
	count int
	reset time.Time
}

type limiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	now     func() time.Time
	buckets map[string]*bucket
}

func newLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *limiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &limiter{limit: limit, window: window, keyFn: keyFn, now: time.Now, buckets: map[string]*bucket{}}
}

// take counts one hit for key and reports the state of its window.
func (l *limiter) take(key string) (ok bool, remaining int, reset time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buckets) >= maxTrackedClients {
		l.sweep(now)
	}
	b, found := l.buckets[key]
	if !found || !now.Before(b.reset) {
		b = &bucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return b.count <= l.limit, max(l.limit-b.count, 0), b.reset.Sub(now)
}

// allow writes the rate headers and, once the window is spent, the 429.
func (l *limiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	ok, remaining, reset := l.take(key)
	resetSec := ceilSeconds(reset)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if ok {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// sweep drops expired buckets. Callers hold l.mu.
func (l *limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if !now.Before(b.reset) {
			delete(l.buckets, key)
		}
	}
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// AuthEmailOrIPKey keys login attempts by the email in the JSON body so one
// account cannot be brute forced from many addresses.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	if field = strings.TrimSpace(field); field == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		if email := peekJSONString(r, field); email != "" {
			return "email:" + strings.ToLower(email)
		}
		return clientIPKey(r)
	}
}

// ClientIP is the first X-Forwarded-For hop or the remote host.
func ClientIP(r *http.Request) string {
	return clientIPKey(r)
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}

// peekJSONString reads one string field from a JSON body and restores the
// body for the next handler.
func peekJSONString(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

func apiPath(path string) string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/api/v1")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
