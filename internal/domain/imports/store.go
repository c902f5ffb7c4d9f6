package imports

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

// HasImported only counts batches that stored at least one ticket, so a file
// that failed entirely can be fixed and uploaded again.
func (s *Store) HasImported(ctx context.Context, userID, checksum string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM import_batches WHERE user_id = $1 AND checksum = $2 AND imported > 0
    )
  `, userID, checksum).Scan(&exists)
	return exists, err
}

func (s *Store) Create(ctx context.Context, b Batch) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO import_batches (id, user_id, filename, checksum, rows_total, imported, skipped, failed)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, b.ID, b.UserID, b.Filename, b.Checksum, b.RowsTotal, b.Imported, b.Skipped, b.Failed)
	return err
}

func (s *Store) List(ctx context.Context, userID string, limit, offset int) ([]Batch, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, filename, checksum, rows_total, imported, skipped, failed, created_at
    FROM import_batches
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.ID, &b.UserID, &b.Filename, &b.Checksum, &b.RowsTotal, &b.Imported, &b.Skipped, &b.Failed, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
