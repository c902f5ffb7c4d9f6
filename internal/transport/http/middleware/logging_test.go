package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type recordedStatus struct {
	statuses []int
}

func (r *recordedStatus) Record(status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}

func TestLoggerRecordsStatus(t *testing.T) {
	rec := &recordedStatus{}
	handler := Logger(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if len(rec.statuses) != 1 || rec.statuses[0] != http.StatusTeapot {
		t.Fatalf("expected teapot status recorded, got %v", rec.statuses)
	}
	if resp.Body.String() != "short and stout" {
		t.Fatalf("expected body passed through, got %q", resp.Body.String())
	}
}
