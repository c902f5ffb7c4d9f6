package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, COALESCE(name, ''), role, active, password_hash, last_login, created_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+`
    FROM users
    WHERE lower(email) = lower($1) AND active
  `, email))
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Store) CreateUser(ctx context.Context, u User) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, name, role, password_hash, active)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, u.Email, u.Name, u.Role, u.PasswordHash, u.Active).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return "", ErrEmailTaken
	}
	return id, err
}

func (s *Store) ListUsers(ctx context.Context, role string) ([]User, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+userColumns+`
    FROM users
    WHERE ($1 = '' OR role = $1)
    ORDER BY email
  `, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	return execOne(ctx, s.DB, "UPDATE users SET active = $2 WHERE id = $1", id, active)
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	return execOne(ctx, s.DB, "UPDATE users SET password_hash = $2 WHERE id = $1", id, hash)
}

func (s *Store) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login = now() WHERE id = $1", id)
	return err
}

func execOne(ctx context.Context, db *pgxpool.Pool, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Active, &u.PasswordHash, &u.LastLogin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}
