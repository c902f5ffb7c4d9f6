package reportshandler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/reports"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

// maxFinancialsDays bounds one financials query to about two tax years.
const maxFinancialsDays = 731

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Service interface {
	Week(ctx context.Context, userID string, anyDate time.Time) (reports.WeekStatement, error)
	Financials(ctx context.Context, userID string, from, to time.Time) (reports.Financials, error)
	Dashboard(ctx context.Context, now time.Time) (reports.Dashboard, error)
}

// UserLookup resolves the technician name printed on statements.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (auth.User, error)
}

type Handler struct {
	Service      Service
	Users        UserLookup
	Perms        middleware.PermissionChecker
	StatementDir string
	Now          func() time.Time
}

func NewHandler(service Service, users UserLookup, perms middleware.PermissionChecker, statementDir string) *Handler {
	return &Handler{Service: service, Users: users, Perms: perms, StatementDir: statementDir, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/pay/week", h.handlePayWeek)
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/week", h.handleWeek)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/week.pdf", h.handleWeekPDF)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/week.xlsx", h.handleWeekXLSX)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/financials", h.handleFinancials)
		r.With(middleware.RequirePermission(auth.PermReportsAdmin, h.Perms)).Get("/dashboard", h.handleDashboard)
	})
}

// statement loads the week containing ?date= for the resolved user. It writes
// the error response itself and reports whether the caller should continue.
func (h *Handler) statement(w http.ResponseWriter, r *http.Request) (reports.WeekStatement, bool) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
		return reports.WeekStatement{}, false
	}
	anyDate, ok := shared.QueryDate(r, "date", h.Now())
	if !ok {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "date", Reason: "must be a valid date in YYYY-MM-DD format"}})
		return reports.WeekStatement{}, false
	}

	st, err := h.Service.Week(r.Context(), targetID, anyDate)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build week statement", requestID)
		return reports.WeekStatement{}, false
	}
	if h.Users != nil {
		if u, err := h.Users.GetUser(r.Context(), targetID); err == nil {
			st.Technician = u.Name
			if st.Technician == "" {
				st.Technician = u.Email
			}
		}
	}
	return st, true
}

func (h *Handler) handlePayWeek(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	api.Success(w, st.Summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWeek(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	api.Success(w, st, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWeekPDF(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteStatementPDF(&buf, st); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render statement", middleware.GetRequestID(r.Context()))
		return
	}
	filename := statementName(st, "pdf")
	h.archive(st.UserID, filename, buf.Bytes())
	api.Attachment(w, contentTypePDF, filename, buf.Bytes())
}

func (h *Handler) handleWeekXLSX(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteWeekXLSX(&buf, st); err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to render workbook", middleware.GetRequestID(r.Context()))
		return
	}
	api.Attachment(w, contentTypeXLSX, statementName(st, "xlsx"), buf.Bytes())
}

func statementName(st reports.WeekStatement, ext string) string {
	return fmt.Sprintf("statement-%s.%s", pay.DayKey(st.Summary.Start), ext)
}

// archive keeps a copy of each rendered statement under StatementDir/<user>.
func (h *Handler) archive(userID, filename string, body []byte) {
	if h.StatementDir == "" {
		return
	}
	dir := filepath.Join(h.StatementDir, filepath.Base(userID))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.Printf("statement archive failed: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, filename), body, 0o640); err != nil {
		log.Printf("statement archive failed: %v", err)
	}
}

func (h *Handler) handleFinancials(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	targetID, err := shared.TargetUserID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
		return
	}

	validator := shared.NewValidator()
	from, _ := validator.Date("from", r.URL.Query().Get("from"))
	to, _ := validator.Date("to", r.URL.Query().Get("to"))
	validator.DateOrder("from", from, "to", to)
	validator.MaxSpan("to", from, to, maxFinancialsDays)
	if validator.Reject(w, requestID) {
		return
	}

	fin, err := h.Service.Financials(r.Context(), targetID, from, to)
	if errors.Is(err, reports.ErrInvalidRange) {
		api.Fail(w, http.StatusBadRequest, "invalid_range", err.Error(), requestID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build financials", requestID)
		return
	}
	api.Success(w, fin, requestID)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.Service.Dashboard(r.Context(), h.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, dash, middleware.GetRequestID(r.Context()))
}
