package importshandler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/imports"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

type Service interface {
	Import(ctx context.Context, userID, filename string, data []byte) (imports.Result, error)
	List(ctx context.Context, userID string, limit, offset int) ([]imports.Batch, error)
}

type Recorder interface {
	RecordImport(imported, failed int)
}

type Handler struct {
	Service   Service
	Perms     middleware.PermissionChecker
	Audit     shared.AuditRecorder
	Metrics   Recorder
	MaxUpload int64
}

func NewHandler(service Service, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder, metrics Recorder, maxUpload int64) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Metrics: metrics, MaxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/imports", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermImportsWrite, h.Perms))
		r.Post("/tickets", h.handleImportTickets)
		r.Get("/", h.handleList)
	})
}

func (h *Handler) handleImportTickets(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	filename, data, err := shared.ReadUpload(r, "file", h.MaxUpload)
	if errors.Is(err, shared.ErrMissingUpload) {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "file", Reason: "is required"}})
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.Import(r.Context(), targetID, filename, data)
	switch {
	case errors.Is(err, imports.ErrDuplicateImport):
		api.Fail(w, http.StatusConflict, "duplicate_import", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, imports.ErrNoHeader), errors.Is(err, imports.ErrNoRows), errors.Is(err, imports.ErrUnreadableFile):
		api.Fail(w, http.StatusUnprocessableEntity, "unreadable_sheet", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "import_failed", "failed to import tickets", middleware.GetRequestID(r.Context()))
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordImport(result.Batch.Imported, result.Batch.Failed)
	}
	shared.Audit(r, h.Audit, user, audit.ActionImport, "import_batch", result.Batch.ID, nil, result.Batch)
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	batches, err := h.Service.List(r.Context(), targetID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "imports_list_failed", "failed to list imports", middleware.GetRequestID(r.Context()))
		return
	}
	if batches == nil {
		batches = []imports.Batch{}
	}
	api.Success(w, batches, middleware.GetRequestID(r.Context()))
}
