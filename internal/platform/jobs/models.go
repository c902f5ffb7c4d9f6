package jobs

import (
	"context"
	"time"
)

const (
	JobPayReprice = "pay_reprice"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type RunFunc func(context.Context) (any, error)

type Run struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	RequestedBy string         `json:"requestedBy,omitempty"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type RunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

type RunStore interface {
	Start(ctx context.Context, jobType, requestedBy string) (string, error)
	Finish(ctx context.Context, id, status string, details []byte) error
	List(ctx context.Context, filter RunFilter, limit, offset int) ([]Run, error)
	Count(ctx context.Context, filter RunFilter) (int, error)
	Get(ctx context.Context, id string) (Run, error)
}
