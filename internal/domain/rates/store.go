package rates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT rate_key, amount, COALESCE(description, ''), updated_at
    FROM rate_card
    ORDER BY rate_key
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Amount, &entry.Description, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) Get(ctx context.Context, key string) (Entry, error) {
	var entry Entry
	err := s.DB.QueryRow(ctx, `
    SELECT rate_key, amount, COALESCE(description, ''), updated_at
    FROM rate_card
    WHERE rate_key = $1
  `, key).Scan(&entry.Key, &entry.Amount, &entry.Description, &entry.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return entry, err
}

func (s *Store) Upsert(ctx context.Context, key string, amount decimal.Decimal, description string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO rate_card (rate_key, amount, description)
    VALUES ($1,$2,$3)
    ON CONFLICT (rate_key)
    DO UPDATE SET amount = EXCLUDED.amount, description = EXCLUDED.description, updated_at = now()
  `, key, amount, description)
	return err
}

func (s *Store) InsertIfAbsent(ctx context.Context, entry Entry) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO rate_card (rate_key, amount, description)
    VALUES ($1,$2,$3)
    ON CONFLICT (rate_key) DO NOTHING
  `, entry.Key, entry.Amount, entry.Description)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM rate_card WHERE rate_key = $1", key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
