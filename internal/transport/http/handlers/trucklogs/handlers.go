package trucklogshandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/trucklog"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

type Service interface {
	Upsert(ctx context.Context, l trucklog.Log) (trucklog.Log, error)
	Lock(ctx context.Context, userID string, date time.Time) error
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]trucklog.Entry, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionChecker
	Audit   shared.AuditRecorder
	Now     func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Now: time.Now}
}

type logRequest struct {
	Odometer     int             `json:"odometer"`
	Mileage      int             `json:"mileage"`
	Gallons      decimal.Decimal `json:"gallons"`
	FuelCost     decimal.Decimal `json:"fuelCost"`
	ExtraPerDiem any             `json:"extraPerDiem"`
	Notes        string          `json:"notes"`
}

type rangeResponse struct {
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Entries []trucklog.Entry `json:"entries"`
	Totals  trucklog.Totals  `json:"totals"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/truck-logs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermTruckLogsWrite, h.Perms))
		r.Get("/", h.handleList)
		r.Put("/{date}", h.handleUpsert)
		r.Post("/{date}/lock", h.handleLock)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	weekStart, weekEnd := pay.WeekBounds(h.Now())
	validator := shared.NewValidator()
	from, ok := shared.QueryDate(r, "from", weekStart)
	if !ok {
		validator.Add("from", "must be a valid date in YYYY-MM-DD format")
	}
	to, ok := shared.QueryDate(r, "to", weekEnd)
	if !ok {
		validator.Add("to", "must be a valid date in YYYY-MM-DD format")
	}
	validator.DateOrder("from", from, "to", to)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	entries, err := h.Service.ListRange(r.Context(), targetID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "truck_logs_failed", "failed to list truck logs", middleware.GetRequestID(r.Context()))
		return
	}
	if entries == nil {
		entries = []trucklog.Entry{}
	}
	api.Success(w, rangeResponse{From: pay.DateOf(from), To: pay.DateOf(to), Entries: entries, Totals: trucklog.Sum(entries)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	var payload logRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	date, _ := validator.Date("date", chi.URLParam(r, "date"))
	if payload.Odometer < 0 {
		validator.Add("odometer", "must not be negative")
	}
	if payload.Mileage < 0 {
		validator.Add("mileage", "must not be negative")
	}
	if payload.Gallons.IsNegative() {
		validator.Add("gallons", "must not be negative")
	}
	if payload.FuelCost.IsNegative() {
		validator.Add("fuelCost", "must not be negative")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	saved, err := h.Service.Upsert(r.Context(), trucklog.Log{
		UserID:       targetID,
		LogDate:      date,
		Odometer:     payload.Odometer,
		Mileage:      payload.Mileage,
		Gallons:      payload.Gallons,
		FuelCost:     payload.FuelCost,
		ExtraPerDiem: pay.ToBool(payload.ExtraPerDiem),
		Notes:        payload.Notes,
	})
	switch {
	case errors.Is(err, trucklog.ErrLogLocked):
		api.Fail(w, http.StatusConflict, "log_locked", "this day is locked and can no longer be edited", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, trucklog.ErrMissingDate), errors.Is(err, trucklog.ErrNegativeValue):
		api.Fail(w, http.StatusBadRequest, "invalid_log", err.Error(), middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "truck_log_save_failed", "failed to save truck log", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	date, _ := validator.Date("date", chi.URLParam(r, "date"))
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Lock(r.Context(), targetID, date); err != nil {
		if errors.Is(err, trucklog.ErrLogNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "no truck log for that day", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "truck_log_lock_failed", "failed to lock truck log", middleware.GetRequestID(r.Context()))
		return
	}
	day := pay.DayKey(date)
	shared.Audit(r, h.Audit, user, audit.ActionLogLock, "truck_log", targetID+"/"+day, nil, map[string]string{"date": day})
	api.Success(w, map[string]any{"date": day, "locked": true}, middleware.GetRequestID(r.Context()))
}
