package reconcilehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/reconcile"
	"fieldpay/internal/domain/reports"
	"fieldpay/internal/platform/tabular"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

type Service interface {
	RunWeek(ctx context.Context, userID string, anyDate time.Time, in reconcile.Input) (reconcile.WeekReport, error)
	ListRuns(ctx context.Context, userID string, limit, offset int) ([]reconcile.Run, error)
}

type Handler struct {
	Service   Service
	Perms     middleware.PermissionChecker
	Audit     shared.AuditRecorder
	MaxUpload int64
	Now       func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder, maxUpload int64) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, MaxUpload: maxUpload, Now: time.Now}
}

type textRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reconcile", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermReconcileRun, h.Perms))
		r.Post("/week", h.handleWeek)
		r.Get("/runs", h.handleListRuns)
	})
}

// handleWeek accepts either a multipart "file" upload (CSV, XLSX, XLS) or a
// JSON body with pasted report text.
func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	anyDate, ok := shared.QueryDate(r, "date", h.Now())
	if !ok {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
		return
	}

	input, ok := h.readInput(w, r)
	if !ok {
		return
	}

	report, err := h.Service.RunWeek(r.Context(), targetID, anyDate, input)
	if errors.Is(err, reconcile.ErrEmptySource) {
		api.Fail(w, http.StatusUnprocessableEntity, "empty_source", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reconcile_failed", "failed to reconcile week", middleware.GetRequestID(r.Context()))
		return
	}

	shared.Audit(r, h.Audit, user, audit.ActionReconcile, "reconciliation_run", report.RunID, nil, map[string]any{
		"userId":    targetID,
		"weekStart": pay.DayKey(report.WeekStart),
		"source":    input.Name,
		"stats":     report.Stats,
	})

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		var buf bytes.Buffer
		if err := reports.WriteReconciliationCSV(&buf, report); err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to write csv", middleware.GetRequestID(r.Context()))
			return
		}
		api.Attachment(w, "text/csv", fmt.Sprintf("reconciliation-%s.csv", pay.DayKey(report.WeekStart)), buf.Bytes())
		return
	}
	api.Success(w, report, middleware.GetRequestID(r.Context()))
}

func (h *Handler) readInput(w http.ResponseWriter, r *http.Request) (reconcile.Input, bool) {
	requestID := middleware.GetRequestID(r.Context())
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		filename, data, err := shared.ReadUpload(r, "file", h.MaxUpload)
		if errors.Is(err, shared.ErrMissingUpload) {
			if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
				return reconcile.Input{Kind: reconcile.SourceKindText, Name: "pasted text", Text: text}, true
			}
			shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "file", Reason: "is required"}})
			return reconcile.Input{}, false
		}
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", requestID)
			return reconcile.Input{}, false
		}
		rows, err := tabular.ReadRows(data, filename)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "unreadable_sheet", err.Error(), requestID)
			return reconcile.Input{}, false
		}
		return reconcile.Input{Kind: reconcile.SourceKindTable, Name: filename, Rows: rows}, true
	}

	var payload textRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return reconcile.Input{}, false
	}
	validator := shared.NewValidator()
	validator.Required("text", payload.Text, "is required")
	if validator.Reject(w, requestID) {
		return reconcile.Input{}, false
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "pasted text"
	}
	return reconcile.Input{Kind: reconcile.SourceKindText, Name: name, Text: payload.Text}, true
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	runs, err := h.Service.ListRuns(r.Context(), targetID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reconcile_runs_failed", "failed to list reconciliation runs", middleware.GetRequestID(r.Context()))
		return
	}
	if runs == nil {
		runs = []reconcile.Run{}
	}
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}
