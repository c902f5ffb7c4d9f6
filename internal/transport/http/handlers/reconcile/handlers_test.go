package reconcilehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/reconcile"
	"fieldpay/internal/transport/http/middleware"
)

type fakeService struct {
	gotUser  string
	gotDate  time.Time
	gotInput reconcile.Input
}

func (f *fakeService) RunWeek(_ context.Context, userID string, anyDate time.Time, in reconcile.Input) (reconcile.WeekReport, error) {
	f.gotUser, f.gotDate, f.gotInput = userID, anyDate, in
	if in.Kind == reconcile.SourceKindText && strings.TrimSpace(in.Text) == "nothing" {
		return reconcile.WeekReport{}, reconcile.ErrEmptySource
	}
	return reconcile.WeekReport{
		RunID:     "run-1",
		WeekStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		WeekEnd:   time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC),
		Report: reconcile.Report{
			Rows: []reconcile.Row{{
				Ticket:      "T1",
				LocalPay:    decimal.NewFromInt(100),
				ExternalPay: decimal.NewFromInt(90),
				Diff:        decimal.NewFromInt(10),
				Status:      reconcile.StatusVariance,
			}},
			Stats: reconcile.Stats{VarianceCount: 1, VarianceAmount: decimal.NewFromInt(10)},
		},
	}, nil
}

func (f *fakeService) ListRuns(context.Context, string, int, int) ([]reconcile.Run, error) {
	return nil, nil
}

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(_ context.Context, _, action, _, _, _, _ string, _, _ any) error {
	f.actions = append(f.actions, action)
	return nil
}

var tech = auth.UserContext{UserID: "t1", Role: auth.RoleTechnician}

func newHandler(svc *fakeService, audits *fakeAudit) *Handler {
	h := NewHandler(svc, auth.StaticPermissions{}, audits, 1<<20)
	h.Now = func() time.Time { return time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC) }
	return h
}

func serve(h *Handler, user auth.UserContext, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestReconcileSheetUpload(t *testing.T) {
	svc := &fakeService{}
	audits := &fakeAudit{}
	h := newHandler(svc, audits)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "scrub.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Ticket,Total\nT1,90\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/reconcile/week?date=2024-03-12", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := serve(h, tech, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "t1", svc.gotUser)
	assert.Equal(t, "2024-03-12", svc.gotDate.Format("2006-01-02"))
	assert.Equal(t, reconcile.SourceKindTable, svc.gotInput.Kind)
	assert.Equal(t, "scrub.csv", svc.gotInput.Name)
	assert.Equal(t, [][]string{{"Ticket", "Total"}, {"T1", "90"}}, svc.gotInput.Rows)
	assert.Equal(t, []string{audit.ActionReconcile}, audits.actions)

	var envelope struct {
		Data struct {
			RunID string `json:"runId"`
			Rows  []struct {
				Status string `json:"status"`
			} `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "run-1", envelope.Data.RunID)
	require.Len(t, envelope.Data.Rows, 1)
	assert.Equal(t, "Variance", envelope.Data.Rows[0].Status)
}

func TestReconcilePastedText(t *testing.T) {
	svc := &fakeService{}
	h := newHandler(svc, &fakeAudit{})

	req := httptest.NewRequest(http.MethodPost, "/reconcile/week", strings.NewReader(`{"text":"T1 $90.00"}`))
	rec := serve(h, tech, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, reconcile.SourceKindText, svc.gotInput.Kind)
	assert.Equal(t, "pasted text", svc.gotInput.Name)
	assert.Equal(t, "2024-03-13", svc.gotDate.Format("2006-01-02"))
}

func TestReconcileCSVExport(t *testing.T) {
	h := newHandler(&fakeService{}, &fakeAudit{})

	req := httptest.NewRequest(http.MethodPost, "/reconcile/week?format=csv", strings.NewReader(`{"text":"T1 90"}`))
	rec := serve(h, tech, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reconciliation-2024-03-11.csv")
	assert.Contains(t, rec.Body.String(), "T1")
}

func TestReconcileRejects(t *testing.T) {
	h := newHandler(&fakeService{}, &fakeAudit{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "empty text", path: "/reconcile/week", body: `{"text":"  "}`, status: http.StatusBadRequest},
		{name: "bad json", path: "/reconcile/week", body: `{`, status: http.StatusBadRequest},
		{name: "bad date", path: "/reconcile/week?date=13/03/2024", body: `{"text":"T1 90"}`, status: http.StatusBadRequest},
		{name: "nothing parsed", path: "/reconcile/week", body: `{"text":"nothing"}`, status: http.StatusUnprocessableEntity},
		{name: "foreign user", path: "/reconcile/week?userId=t2", body: `{"text":"T1 90"}`, status: http.StatusForbidden},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader(tc.body))
			rec := serve(h, tech, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListRunsReturnsEmptyArray(t *testing.T) {
	h := newHandler(&fakeService{}, &fakeAudit{})

	rec := serve(h, tech, httptest.NewRequest(http.MethodGet, "/reconcile/runs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
