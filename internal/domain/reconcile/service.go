package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/rates"
	"fieldpay/internal/domain/tickets"
)

var ErrEmptySource = errors.New("no ticket amounts could be read from the report")

type TicketLister interface {
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]tickets.Ticket, error)
}

type RateLoader interface {
	Load(ctx context.Context) (rates.Table, error)
}

type RunStore interface {
	Create(ctx context.Context, run Run) (string, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Run, error)
}

type Recorder interface {
	RecordReconciliation(matches, variances int)
}

type Service struct {
	tickets TicketLister
	rates   RateLoader
	runs    RunStore
	metrics Recorder
}

func NewService(tickets TicketLister, rates RateLoader, runs RunStore, metrics Recorder) *Service {
	return &Service{tickets: tickets, rates: rates, runs: runs, metrics: metrics}
}

// LocalJobs prices tickets from their raw fields. Days off and undesignated
// entries carry no billing ticket and are left out.
func LocalJobs(list []tickets.Ticket, table rates.Table) []LocalJob {
	out := make([]LocalJob, 0, len(list))
	for _, t := range list {
		if t.TicketNumber == "" || !pay.IsBillable(t.InstallType) {
			continue
		}
		out = append(out, LocalJob{Ticket: t.TicketNumber, Date: t.InstallDate, Pay: pay.Total(t.JobRecord, table)})
	}
	return out
}

// RunWeek reconciles the technician's week containing anyDate against an
// external report. A failure to store the run summary is logged, not returned.
func (s *Service) RunWeek(ctx context.Context, userID string, anyDate time.Time, in Input) (WeekReport, error) {
	source := in.Parse()
	if len(source.Amounts) == 0 {
		return WeekReport{Source: source}, ErrEmptySource
	}

	start, end := pay.WeekBounds(anyDate)
	list, err := s.tickets.ListRange(ctx, userID, start, end)
	if err != nil {
		return WeekReport{}, fmt.Errorf("list tickets: %w", err)
	}
	table, err := s.rates.Load(ctx)
	if err != nil {
		return WeekReport{}, fmt.Errorf("load rates: %w", err)
	}

	report := Reconcile(LocalJobs(list, table), source.Amounts)
	out := WeekReport{WeekStart: start, WeekEnd: end, Source: source, Report: report}

	if s.metrics != nil {
		s.metrics.RecordReconciliation(report.Stats.Matches, report.Stats.VarianceCount)
	}
	if s.runs != nil {
		runID, err := s.runs.Create(ctx, Run{
			UserID:         userID,
			WeekStart:      start,
			SourceKind:     in.Kind,
			SourceName:     in.Name,
			Parsed:         source.Parsed,
			Skipped:        source.Skipped,
			Matches:        report.Stats.Matches,
			VarianceCount:  report.Stats.VarianceCount,
			VarianceAmount: report.Stats.VarianceAmount,
			LocalTotal:     report.Stats.LocalTotal,
			ExternalTotal:  report.Stats.ExternalTotal,
		})
		if err != nil {
			slog.Warn("reconciliation run save failed", "userId", userID, "err", err)
		}
		out.RunID = runID
	}
	return out, nil
}

func (s *Service) ListRuns(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
	return s.runs.List(ctx, userID, limit, offset)
}
