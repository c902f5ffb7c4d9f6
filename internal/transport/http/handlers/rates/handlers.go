package rateshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/rates"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context) ([]rates.Entry, error)
	Set(ctx context.Context, key string, amount decimal.Decimal, description string) (*rates.Entry, error)
	Delete(ctx context.Context, key string) error
}

// RepriceTrigger queues a refresh of cached ticket pay after a rate edit.
type RepriceTrigger interface {
	EnqueueReprice(requestedBy string) error
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionChecker
	Audit   shared.AuditRecorder
	Reprice RepriceTrigger
}

func NewHandler(service Service, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder, reprice RepriceTrigger) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Reprice: reprice}
}

type setRateRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rates", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermRatesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermRatesWrite, h.Perms)).Put("/{key}", h.handleSet)
		r.With(middleware.RequirePermission(auth.PermRatesWrite, h.Perms)).Delete("/{key}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rates_list_failed", "failed to list rates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, entries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	key := strings.TrimSpace(chi.URLParam(r, "key"))

	var payload setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("key", key, "is required")
	if payload.Amount == nil {
		validator.Add("amount", "is required")
	} else if payload.Amount.IsNegative() {
		validator.Add("amount", "must not be negative")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	previous, err := h.Service.Set(r.Context(), key, *payload.Amount, payload.Description)
	if errors.Is(err, rates.ErrInvalidKey) || errors.Is(err, rates.ErrNegativeRate) {
		api.Fail(w, http.StatusBadRequest, "invalid_rate", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "rate_set_failed", "failed to save rate", middleware.GetRequestID(r.Context()))
		return
	}

	after := map[string]any{"key": key, "amount": *payload.Amount, "description": payload.Description}
	var before any
	if previous != nil {
		before = previous
	}
	shared.Audit(r, h.Audit, user, audit.ActionRateSet, "rate", key, before, after)

	after["repriceQueued"] = h.queueReprice(user.UserID)
	api.Success(w, after, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	key := strings.TrimSpace(chi.URLParam(r, "key"))

	if err := h.Service.Delete(r.Context(), key); err != nil {
		if errors.Is(err, rates.ErrEntryNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "rate not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "rate_delete_failed", "failed to delete rate", middleware.GetRequestID(r.Context()))
		return
	}

	shared.Audit(r, h.Audit, user, audit.ActionRateDelete, "rate", key, map[string]string{"key": key}, nil)
	api.Success(w, map[string]any{"key": key, "deleted": true, "repriceQueued": h.queueReprice(user.UserID)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) queueReprice(requestedBy string) bool {
	if h.Reprice == nil {
		return false
	}
	if err := h.Reprice.EnqueueReprice(requestedBy); err != nil {
		slog.Warn("reprice enqueue failed", "err", err)
		return false
	}
	return true
}
