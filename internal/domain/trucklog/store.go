package trucklog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const logColumns = `
    id, user_id, log_date, odometer, mileage, gallons, fuel_cost, extra_per_diem, locked,
    COALESCE(notes, ''), updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, userID string, date time.Time) (Log, error) {
	return scanOne(s.DB.QueryRow(ctx, `SELECT `+logColumns+`
    FROM daily_logs
    WHERE user_id = $1 AND log_date = $2
  `, userID, date))
}

// Upsert writes the log unless the stored row is locked.
func (s *Store) Upsert(ctx context.Context, l Log) (Log, error) {
	saved, err := scanOne(s.DB.QueryRow(ctx, `
    INSERT INTO daily_logs (user_id, log_date, odometer, mileage, gallons, fuel_cost, extra_per_diem, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (user_id, log_date)
    DO UPDATE SET odometer = EXCLUDED.odometer, mileage = EXCLUDED.mileage, gallons = EXCLUDED.gallons,
      fuel_cost = EXCLUDED.fuel_cost, extra_per_diem = EXCLUDED.extra_per_diem, notes = EXCLUDED.notes,
      updated_at = now()
    WHERE daily_logs.locked = false
    RETURNING `+logColumns, l.UserID, l.LogDate, l.Odometer, l.Mileage, l.Gallons, l.FuelCost, l.ExtraPerDiem, l.Notes))
	if errors.Is(err, ErrLogNotFound) {
		return Log{}, ErrLogLocked
	}
	return saved, err
}

func (s *Store) Lock(ctx context.Context, userID string, date time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE daily_logs SET locked = true, updated_at = now()
    WHERE user_id = $1 AND log_date = $2
  `, userID, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLogNotFound
	}
	return nil
}

func (s *Store) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Log, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+logColumns+`
    FROM daily_logs
    WHERE user_id = $1 AND log_date BETWEEN $2 AND $3
    ORDER BY log_date
  `, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) LastBefore(ctx context.Context, userID string, date time.Time) (Log, error) {
	return scanOne(s.DB.QueryRow(ctx, `SELECT `+logColumns+`
    FROM daily_logs
    WHERE user_id = $1 AND log_date < $2 AND odometer > 0
    ORDER BY log_date DESC
    LIMIT 1
  `, userID, date))
}

func scanOne(row pgx.Row) (Log, error) {
	l, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, ErrLogNotFound
	}
	return l, err
}

func scanLog(row pgx.Row) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.UserID, &l.LogDate, &l.Odometer, &l.Mileage, &l.Gallons, &l.FuelCost,
		&l.ExtraPerDiem, &l.Locked, &l.Notes, &l.UpdatedAt)
	return l, err
}
