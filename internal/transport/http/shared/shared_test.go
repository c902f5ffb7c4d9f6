package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldpay/internal/domain/auth"
)

func TestTargetUserID(t *testing.T) {
	tech := auth.UserContext{UserID: "t1", Role: auth.RoleTechnician}
	admin := auth.UserContext{UserID: "a1", Role: auth.RoleAdmin}
	tests := []struct {
		name    string
		url     string
		user    auth.UserContext
		want    string
		wantErr error
	}{
		{name: "self by default", url: "/pay/week", user: tech, want: "t1"},
		{name: "self named", url: "/pay/week?userId=t1", user: tech, want: "t1"},
		{name: "technician on other", url: "/pay/week?userId=t2", user: tech, wantErr: ErrForeignUser},
		{name: "admin on technician", url: "/pay/week?userId=t2", user: admin, want: "t2"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := TargetUserID(httptest.NewRequest(http.MethodGet, tc.url, nil), tc.user)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestQueryDate(t *testing.T) {
	fallback := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)

	got, ok := QueryDate(httptest.NewRequest(http.MethodGet, "/x", nil), "date", fallback)
	if !ok || !got.Equal(fallback) {
		t.Fatalf("expected fallback, got %v %v", got, ok)
	}
	got, ok = QueryDate(httptest.NewRequest(http.MethodGet, "/x?date=2025-06-02", nil), "date", fallback)
	if !ok || got.Day() != 2 {
		t.Fatalf("expected parsed date, got %v %v", got, ok)
	}
	if _, ok := QueryDate(httptest.NewRequest(http.MethodGet, "/x?date=06/02", nil), "date", fallback); ok {
		t.Fatal("expected malformed date rejected")
	}
}

func TestValidatorAmountAndIssues(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Amount("amount", "-1"); ok {
		t.Fatal("expected negative rejected")
	}
	if _, ok := v.Amount("amount", "abc"); ok {
		t.Fatal("expected garbage rejected")
	}
	if amount, ok := v.Amount("rate", "12.50"); !ok || amount.String() != "12.5" {
		t.Fatalf("expected 12.5, got %v %v", amount, ok)
	}
	v.Required("key", " ", "is required")

	issues := v.Issues()
	if len(issues) != 3 || issues[0].Field != "amount" || issues[2].Field != "key" {
		t.Fatalf("unexpected issues %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req") || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected rejection with 400, got %d", rec.Code)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{query: "limit=500&offset=20", limit: 200, offset: 20},
		{query: "limit=-3", limit: 50, offset: 0},
		{query: "limit=10&page=3", limit: 10, offset: 20},
		{query: "page=0&offset=5", limit: 50, offset: 5},
		{query: "offset=-1", limit: 50, offset: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.query, func(t *testing.T) {
			p := ParsePagination(httptest.NewRequest(http.MethodGet, "/x?"+tc.query, nil), 50, 200)
			if p.Limit != tc.limit || p.Offset != tc.offset {
				t.Fatalf("expected %d/%d, got %+v", tc.limit, tc.offset, p)
			}
		})
	}
}

func TestSetTotal(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTotal(rec, 42)
	if rec.Header().Get(TotalCountHeader) != "42" {
		t.Fatalf("unexpected header %q", rec.Header().Get(TotalCountHeader))
	}
}
