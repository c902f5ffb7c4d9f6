package reportshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/reports"
	"fieldpay/internal/transport/http/middleware"
)

var weekStart = time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

type fakeService struct {
	gotUser string
	gotFrom time.Time
}

func (f *fakeService) Week(_ context.Context, userID string, _ time.Time) (reports.WeekStatement, error) {
	f.gotUser = userID
	return reports.WeekStatement{
		UserID: userID,
		Summary: pay.WeekSummary{
			Start: weekStart,
			End:   weekStart.AddDate(0, 0, 6),
			Total: decimal.RequireFromString("412.50"),
		},
	}, nil
}

func (f *fakeService) Financials(_ context.Context, _ string, from, to time.Time) (reports.Financials, error) {
	f.gotFrom = from
	return reports.Financials{From: from, To: to, GrossPay: decimal.NewFromInt(1000)}, nil
}

func (f *fakeService) Dashboard(context.Context, time.Time) (reports.Dashboard, error) {
	return reports.Dashboard{WeekStart: weekStart, Technicians: 3}, nil
}

type fakeUsers struct{}

func (fakeUsers) GetUser(_ context.Context, id string) (auth.User, error) {
	if id == "t1" {
		return auth.User{ID: id, Name: "Sam Field"}, nil
	}
	return auth.User{}, errors.New("not found")
}

var (
	admin = auth.UserContext{UserID: "a1", Role: auth.RoleAdmin}
	tech  = auth.UserContext{UserID: "t1", Role: auth.RoleTechnician}
)

func serve(h *Handler, user auth.UserContext, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPayWeek(t *testing.T) {
	h := NewHandler(&fakeService{}, fakeUsers{}, auth.StaticPermissions{}, "")

	rec := serve(h, tech, "/pay/week?date=2024-03-13")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Total string `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Total != "412.5" {
		t.Fatalf("unexpected total %q", envelope.Data.Total)
	}
}

func TestWeekStatementNamesTechnician(t *testing.T) {
	h := NewHandler(&fakeService{}, fakeUsers{}, auth.StaticPermissions{}, "")

	rec := serve(h, tech, "/reports/week")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"technician":"Sam Field"`) {
		t.Fatalf("expected technician name, got %s", rec.Body.String())
	}
}

func TestWeekExports(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(&fakeService{}, fakeUsers{}, auth.StaticPermissions{}, dir)

	tests := []struct {
		path        string
		contentType string
		filename    string
		magic       string
	}{
		{path: "/reports/week.pdf", contentType: contentTypePDF, filename: "statement-2024-03-11.pdf", magic: "%PDF"},
		{path: "/reports/week.xlsx", contentType: contentTypeXLSX, filename: "statement-2024-03-11.xlsx", magic: "PK"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			rec := serve(h, tech, tc.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if rec.Header().Get("Content-Type") != tc.contentType {
				t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
			}
			if !strings.Contains(rec.Header().Get("Content-Disposition"), tc.filename) {
				t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
			}
			if !strings.HasPrefix(rec.Body.String(), tc.magic) {
				t.Fatalf("body does not look like %s", tc.filename)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "t1", "statement-2024-03-11.pdf")); err != nil {
		t.Fatalf("expected archived statement: %v", err)
	}
}

func TestFinancials(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, nil, auth.StaticPermissions{}, "")

	tests := []struct {
		name   string
		user   auth.UserContext
		path   string
		status int
	}{
		{name: "ok", user: tech, path: "/reports/financials?from=2024-01-01&to=2024-03-31", status: http.StatusOK},
		{name: "admin for technician", user: admin, path: "/reports/financials?from=2024-01-01&to=2024-03-31&userId=t1", status: http.StatusOK},
		{name: "missing to", user: tech, path: "/reports/financials?from=2024-01-01", status: http.StatusBadRequest},
		{name: "too long", user: tech, path: "/reports/financials?from=2020-01-01&to=2024-03-31", status: http.StatusBadRequest},
		{name: "reversed", user: tech, path: "/reports/financials?from=2024-03-31&to=2024-01-01", status: http.StatusBadRequest},
		{name: "foreign user", user: tech, path: "/reports/financials?from=2024-01-01&to=2024-03-31&userId=t2", status: http.StatusForbidden},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.user, tc.path)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
	if svc.gotFrom.Format("2006-01-02") != "2024-01-01" {
		t.Fatalf("unexpected from %s", svc.gotFrom)
	}
}

func TestDashboardRequiresAdmin(t *testing.T) {
	h := NewHandler(&fakeService{}, nil, auth.StaticPermissions{}, "")

	if rec := serve(h, tech, "/reports/dashboard"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for technician, got %d", rec.Code)
	}
	if rec := serve(h, admin, "/reports/dashboard"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}
