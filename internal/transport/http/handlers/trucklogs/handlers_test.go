package trucklogshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/trucklog"
	"fieldpay/internal/transport/http/middleware"
)

type fakeService struct {
	logs map[string]trucklog.Log
}

func (f *fakeService) Upsert(_ context.Context, l trucklog.Log) (trucklog.Log, error) {
	key := l.UserID + pay.DayKey(l.LogDate)
	if existing, ok := f.logs[key]; ok && existing.Locked {
		return trucklog.Log{}, trucklog.ErrLogLocked
	}
	f.logs[key] = l
	return l, nil
}

func (f *fakeService) Lock(_ context.Context, userID string, date time.Time) error {
	key := userID + pay.DayKey(date)
	l, ok := f.logs[key]
	if !ok {
		return trucklog.ErrLogNotFound
	}
	l.Locked = true
	f.logs[key] = l
	return nil
}

func (f *fakeService) ListRange(_ context.Context, userID string, _, _ time.Time) ([]trucklog.Entry, error) {
	var out []trucklog.Entry
	for _, l := range f.logs {
		if l.UserID == userID {
			out = append(out, trucklog.Entry{Log: l, Miles: l.Mileage})
		}
	}
	return out, nil
}

var tech = auth.UserContext{UserID: "u1", Role: auth.RoleTechnician}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), tech))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUpsertLockCycle(t *testing.T) {
	svc := &fakeService{logs: map[string]trucklog.Log{}}
	h := NewHandler(svc, auth.StaticPermissions{}, nil)

	rec := serve(h, http.MethodPut, "/truck-logs/2024-03-04", `{"mileage":80,"gallons":"6.5","fuelCost":"22.10","extraPerDiem":"Y"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	saved := svc.logs["u12024-03-04"]
	if !saved.ExtraPerDiem || !saved.Gallons.Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("unexpected saved log %+v", saved)
	}

	if rec := serve(h, http.MethodPost, "/truck-logs/2024-03-04/lock", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected lock ok, got %d", rec.Code)
	}
	rec = serve(h, http.MethodPut, "/truck-logs/2024-03-04", `{"mileage":90}`)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), "log_locked") {
		t.Fatalf("expected locked conflict, got %d %s", rec.Code, rec.Body.String())
	}
	if rec := serve(h, http.MethodPost, "/truck-logs/2024-03-09/lock", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 locking a missing day, got %d", rec.Code)
	}
}

func TestUpsertValidation(t *testing.T) {
	h := NewHandler(&fakeService{logs: map[string]trucklog.Log{}}, auth.StaticPermissions{}, nil)
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "bad date", path: "/truck-logs/yesterday", body: `{}`},
		{name: "negative odometer", path: "/truck-logs/2024-03-04", body: `{"odometer":-5}`},
		{name: "negative fuel", path: "/truck-logs/2024-03-04", body: `{"fuelCost":"-1"}`},
		{name: "bad json", path: "/truck-logs/2024-03-04", body: `{`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if rec := serve(h, http.MethodPut, tc.path, tc.body); rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestListTotals(t *testing.T) {
	svc := &fakeService{logs: map[string]trucklog.Log{
		"u12024-03-04": {UserID: "u1", LogDate: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Mileage: 80, FuelCost: decimal.NewFromInt(20)},
		"u12024-03-05": {UserID: "u1", LogDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Mileage: 40, FuelCost: decimal.NewFromInt(10)},
	}}
	h := NewHandler(svc, auth.StaticPermissions{}, nil)

	rec := serve(h, http.MethodGet, "/truck-logs?from=2024-03-04&to=2024-03-10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Entries []json.RawMessage `json:"entries"`
			Totals  struct {
				Miles    int    `json:"miles"`
				FuelCost string `json:"fuelCost"`
			} `json:"totals"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Entries) != 2 || envelope.Data.Totals.Miles != 120 || envelope.Data.Totals.FuelCost != "30" {
		t.Fatalf("unexpected totals %+v", envelope.Data)
	}
}
