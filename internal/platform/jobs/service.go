package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

var ErrQueueFull = errors.New("job queue full")

type Service struct {
	store RunStore
	queue chan job
}

type job struct {
	Type        string
	RequestedBy string
	Run         RunFunc
}

func New(store RunStore) *Service {
	return &Service{
		store: store,
		queue: make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue hands the job to the background worker without blocking.
func (s *Service) Enqueue(jobType, requestedBy string, run RunFunc) error {
	select {
	case s.queue <- job{Type: jobType, RequestedBy: requestedBy, Run: run}:
		return nil
	default:
		slog.Warn("job queue full", "jobType", jobType, "requestedBy", requestedBy)
		return ErrQueueFull
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, requestedBy string, run RunFunc) (any, error) {
	return s.runJob(ctx, job{Type: jobType, RequestedBy: requestedBy, Run: run})
}

func (s *Service) ListRuns(ctx context.Context, filter RunFilter, limit, offset int) ([]Run, int, error) {
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	runs, err := s.store.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "requestedBy", j.RequestedBy, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID, err := s.store.Start(ctx, j.Type, j.RequestedBy)
	if err != nil {
		slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		if details == nil {
			details = map[string]any{"error": err.Error()}
		}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if updErr := s.store.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}
