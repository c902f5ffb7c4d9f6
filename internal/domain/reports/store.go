package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Dashboard struct {
	WeekStart          time.Time `json:"weekStart"`
	Technicians        int       `json:"technicians"`
	TicketsThisWeek    int       `json:"ticketsThisWeek"`
	UnlockedLogs       int       `json:"unlockedLogs"`
	ImportsThisWeek    int       `json:"importsThisWeek"`
	RunsWithVariances  int       `json:"runsWithVariances"`
	FailedJobsThisWeek int       `json:"failedJobsThisWeek"`
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Dashboard(ctx context.Context, weekStart, weekEnd time.Time) (Dashboard, error) {
	d := Dashboard{WeekStart: weekStart}
	err := s.DB.QueryRow(ctx, `
    SELECT
      (SELECT COUNT(1) FROM users WHERE role = 'technician' AND active),
      (SELECT COUNT(1) FROM job_tickets WHERE install_date BETWEEN $1 AND $2),
      (SELECT COUNT(1) FROM daily_logs WHERE log_date BETWEEN $1 AND $2 AND NOT locked),
      (SELECT COUNT(1) FROM import_batches WHERE created_at >= $1),
      (SELECT COUNT(1) FROM reconciliation_runs WHERE week_start = $1 AND variance_count > 0),
      (SELECT COUNT(1) FROM job_runs WHERE started_at >= $1 AND status = 'failed')
  `, weekStart, weekEnd).Scan(&d.Technicians, &d.TicketsThisWeek, &d.UnlockedLogs, &d.ImportsThisWeek,
		&d.RunsWithVariances, &d.FailedJobsThisWeek)
	return d, err
}
