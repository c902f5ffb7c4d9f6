package reconcile

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, run Run) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO reconciliation_runs (user_id, week_start, source_kind, source_name, parsed, skipped,
      matches, variance_count, variance_amount, local_total, external_total)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, run.UserID, run.WeekStart, run.SourceKind, run.SourceName, run.Parsed, run.Skipped,
		run.Matches, run.VarianceCount, run.VarianceAmount, run.LocalTotal, run.ExternalTotal).Scan(&id)
	return id, err
}

func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, week_start, source_kind, COALESCE(source_name, ''), parsed, skipped,
      matches, variance_count, variance_amount, local_total, external_total, created_at
    FROM reconciliation_runs
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.UserID, &r.WeekStart, &r.SourceKind, &r.SourceName, &r.Parsed, &r.Skipped,
			&r.Matches, &r.VarianceCount, &r.VarianceAmount, &r.LocalTotal, &r.ExternalTotal, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
