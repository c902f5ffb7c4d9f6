package jobshandler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/platform/jobs"
	"fieldpay/internal/transport/http/api"
	"fieldpay/internal/transport/http/middleware"
	"fieldpay/internal/transport/http/shared"
)

type Runner interface {
	Enqueue(jobType, requestedBy string, run jobs.RunFunc) error
	RunNow(ctx context.Context, jobType, requestedBy string, run jobs.RunFunc) (any, error)
	ListRuns(ctx context.Context, filter jobs.RunFilter, limit, offset int) ([]jobs.Run, int, error)
	GetRun(ctx context.Context, id string) (jobs.Run, error)
}

type Repricer interface {
	Reprice(ctx context.Context, from, to time.Time) (tickets.RepriceResult, error)
}

type Handler struct {
	Jobs     Runner
	Repricer Repricer
	Perms    middleware.PermissionChecker
	Audit    shared.AuditRecorder
}

func NewHandler(runner Runner, repricer Repricer, perms middleware.PermissionChecker, auditSvc shared.AuditRecorder) *Handler {
	return &Handler{Jobs: runner, Repricer: repricer, Perms: perms, Audit: auditSvc}
}

// Full reprice window when the caller names no range.
var (
	repriceFrom = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	repriceTo   = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/jobs", func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermJobsRun, h.Perms))
		r.Post("/reprice", h.handleReprice)
		r.Get("/runs", h.handleListRuns)
		r.Get("/runs/{runID}", h.handleGetRun)
	})
}

// EnqueueReprice queues a full reprice in the background.
func (h *Handler) EnqueueReprice(requestedBy string) error {
	return h.Jobs.Enqueue(jobs.JobPayReprice, requestedBy, h.repriceJob(repriceFrom, repriceTo))
}

func (h *Handler) repriceJob(from, to time.Time) jobs.RunFunc {
	return func(ctx context.Context) (any, error) {
		res, err := h.Repricer.Reprice(ctx, from, to)
		return map[string]any{
			"from":    from.Format("2006-01-02"),
			"to":      to.Format("2006-01-02"),
			"checked": res.Checked,
			"updated": res.Updated,
		}, err
	}
}

func (h *Handler) handleReprice(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	validator := shared.NewValidator()
	from, ok := shared.QueryDate(r, "from", repriceFrom)
	if !ok {
		validator.Add("from", "must be a valid date in YYYY-MM-DD format")
	}
	to, ok := shared.QueryDate(r, "to", repriceTo)
	if !ok {
		validator.Add("to", "must be a valid date in YYYY-MM-DD format")
	}
	validator.DateOrder("from", from, "to", to)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if r.URL.Query().Get("async") == "true" {
		if err := h.Jobs.Enqueue(jobs.JobPayReprice, user.UserID, h.repriceJob(from, to)); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, retry later", middleware.GetRequestID(r.Context()))
			return
		}
		shared.Audit(r, h.Audit, user, audit.ActionReprice, "job", jobs.JobPayReprice, nil, map[string]any{"async": true})
		api.Accepted(w, map[string]string{"status": "queued"}, middleware.GetRequestID(r.Context()))
		return
	}

	details, err := h.Jobs.RunNow(r.Context(), jobs.JobPayReprice, user.UserID, h.repriceJob(from, to))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reprice_failed", "failed to reprice tickets", middleware.GetRequestID(r.Context()))
		return
	}
	shared.Audit(r, h.Audit, user, audit.ActionReprice, "job", jobs.JobPayReprice, nil, details)
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	filter := jobs.RunFilter{
		JobType: r.URL.Query().Get("jobType"),
		Status:  r.URL.Query().Get("status"),
	}
	if from, ok := shared.QueryDate(r, "startedFrom", time.Time{}); ok && !from.IsZero() {
		filter.StartedFrom = &from
	}
	if to, ok := shared.QueryDate(r, "startedTo", time.Time{}); ok && !to.IsZero() {
		filter.StartedTo = &to
	}

	runs, total, err := h.Jobs.ListRuns(r.Context(), filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_runs_failed", "failed to list job runs", middleware.GetRequestID(r.Context()))
		return
	}
	shared.SetTotal(w, total)
	api.Success(w, runs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Jobs.GetRun(r.Context(), chi.URLParam(r, "runID"))
	if errors.Is(err, jobs.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "job run not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "job_run_failed", "failed to load job run", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}
