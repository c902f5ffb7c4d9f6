package ticketshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

const createEndpoint = "tickets.create"

type Service interface {
	Quote(ctx context.Context, t tickets.Ticket) (pay.TicketPay, error)
	Create(ctx context.Context, t tickets.Ticket) (tickets.Ticket, error)
	Update(ctx context.Context, t tickets.Ticket) (tickets.Ticket, error)
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (tickets.Ticket, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]tickets.Ticket, error)
}

type Handler struct {
	Service     Service
	Perms       middleware.PermissionChecker
	Audit       shared.AuditRecorder
	Idempotency shared.IdempotencyStore
	Now         func() time.Time
}

func NewHandler(service Service, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder, idem shared.IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idempotency: idem, Now: time.Now}
}

// ticketPayload shadows the raw ticket's install date with its wire form.
type ticketPayload struct {
	tickets.RawTicket
	InstallDate string `json:"installDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tickets", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermTicketsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermTicketsRead, h.Perms)).Post("/quote", h.handleQuote)
		r.With(middleware.RequirePermission(auth.PermTicketsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermTicketsRead, h.Perms)).Get("/{ticketID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermTicketsWrite, h.Perms)).Put("/{ticketID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermTicketsWrite, h.Perms)).Delete("/{ticketID}", h.handleDelete)
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

	list, err := h.Service.ListRange(r.Context(), targetID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "tickets_list_failed", "failed to list tickets", middleware.GetRequestID(r.Context()))
		return
	}
	if list == nil {
		list = []tickets.Ticket{}
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	ticket, ok := decodeTicket(w, r, user.UserID)
	if !ok {
		return
	}
	quote, err := h.Service.Quote(r.Context(), ticket)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "quote_failed", "failed to price ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, quote, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	idempotencyKey := r.Header.Get(middleware.IdempotencyHeader)
	requestHash := middleware.RequestHash(append([]byte(targetID+":"), body...))
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.UserID, createEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			log.Printf("idempotency check failed: %v", err)
		}
		if found {
			api.Created(w, stored, middleware.GetRequestID(r.Context()))
			return
		}
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	ticket, ok := decodeTicket(w, r, targetID)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), ticket)
	if err != nil {
		h.failWrite(w, r, err, "ticket_create_failed", "failed to create ticket")
		return
	}

	shared.Audit(r, h.Audit, user, audit.ActionTicketCreate, "ticket", created.ID, nil, created)
	if idempotencyKey != "" && h.Idempotency != nil {
		if payload, err := json.Marshal(created); err != nil {
			log.Printf("idempotency response marshal failed: %v", err)
		} else if err := h.Idempotency.Save(r.Context(), user.UserID, createEndpoint, idempotencyKey, requestHash, payload); err != nil {
			log.Printf("idempotency save failed: %v", err)
		}
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	ticket, err := h.Service.Get(r.Context(), targetID, chi.URLParam(r, "ticketID"))
	if errors.Is(err, tickets.ErrTicketNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "ticket not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "ticket_lookup_failed", "failed to load ticket", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	ticket, ok := decodeTicket(w, r, targetID)
	if !ok {
		return
	}
	ticket.ID = chi.URLParam(r, "ticketID")

	updated, err := h.Service.Update(r.Context(), ticket)
	if err != nil {
		h.failWrite(w, r, err, "ticket_update_failed", "failed to update ticket")
		return
	}
	shared.Audit(r, h.Audit, user, audit.ActionTicketUpdate, "ticket", updated.ID, nil, updated)
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	ticketID := chi.URLParam(r, "ticketID")
	if err := h.Service.Delete(r.Context(), targetID, ticketID); err != nil {
		if errors.Is(err, tickets.ErrTicketNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "ticket not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "ticket_delete_failed", "failed to delete ticket", middleware.GetRequestID(r.Context()))
		return
	}
	shared.Audit(r, h.Audit, user, audit.ActionTicketDelete, "ticket", ticketID, map[string]string{"id": ticketID}, nil)
	api.Success(w, map[string]any{"id": ticketID, "deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) failWrite(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, tickets.ErrDuplicateTicket):
		api.Fail(w, http.StatusConflict, "duplicate_ticket", err.Error(), requestID)
	case errors.Is(err, tickets.ErrTicketNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "ticket not found", requestID)
	case errors.Is(err, tickets.ErrMissingInstallDate):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "installDate", Reason: "is required"}})
	case errors.Is(err, tickets.ErrMissingInstallType):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "installType", Reason: "is required"}})
	case errors.Is(err, tickets.ErrMissingTicketNumber):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "ticketNumber", Reason: "is required for billable work"}})
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}

func decodeTicket(w http.ResponseWriter, r *http.Request, userID string) (tickets.Ticket, bool) {
	var payload ticketPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return tickets.Ticket{}, false
	}
	validator := shared.NewValidator()
	date, _ := validator.Date("installDate", payload.InstallDate)
	validator.Required("installType", payload.InstallType, "is required")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return tickets.Ticket{}, false
	}
	payload.RawTicket.InstallDate = date
	return payload.RawTicket.Normalize(userID, tickets.SourceManual), true
}
