package tickets

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const ticketColumns = `
    id, user_id, install_date, COALESCE(ticket_number, ''), install_type,
    spans, conduit_ft, jacks_installed, copper_removed, extra_per_diem, pay_amount,
    COALESCE(customer_name, ''), COALESCE(address, ''), COALESCE(notes, ''), source,
    created_at, updated_at`

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, t Ticket) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_tickets (user_id, install_date, ticket_number, install_type, spans, conduit_ft,
      jacks_installed, copper_removed, extra_per_diem, pay_amount, customer_name, address, notes, source)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
    RETURNING id
  `, t.UserID, t.InstallDate, t.TicketNumber, t.InstallType, t.Spans, t.ConduitFt,
		t.JacksInstalled, t.CopperRemoved, t.ExtraPerDiem, t.PayAmount, t.CustomerName, t.Address, t.Notes, t.Source).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrDuplicateTicket
	}
	return id, err
}

func (s *Store) Update(ctx context.Context, t Ticket) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE job_tickets
    SET install_date = $3, ticket_number = $4, install_type = $5, spans = $6, conduit_ft = $7,
      jacks_installed = $8, copper_removed = $9, extra_per_diem = $10, pay_amount = $11,
      customer_name = $12, address = $13, notes = $14, updated_at = now()
    WHERE id = $1 AND user_id = $2
  `, t.ID, t.UserID, t.InstallDate, t.TicketNumber, t.InstallType, t.Spans, t.ConduitFt,
		t.JacksInstalled, t.CopperRemoved, t.ExtraPerDiem, t.PayAmount, t.CustomerName, t.Address, t.Notes)
	if isUniqueViolation(err) {
		return ErrDuplicateTicket
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM job_tickets WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, id string) (Ticket, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+ticketColumns+`
    FROM job_tickets
    WHERE id = $1 AND user_id = $2
  `, id, userID)
	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ticket{}, ErrTicketNotFound
	}
	return t, err
}

func (s *Store) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Ticket, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+ticketColumns+`
    FROM job_tickets
    WHERE user_id = $1 AND install_date BETWEEN $2 AND $3
    ORDER BY install_date, ticket_number
  `, userID, from, to)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

func (s *Store) ListAllRange(ctx context.Context, from, to time.Time) ([]Ticket, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+ticketColumns+`
    FROM job_tickets
    WHERE install_date BETWEEN $1 AND $2
    ORDER BY user_id, install_date, ticket_number
  `, from, to)
	if err != nil {
		return nil, err
	}
	return collectTickets(rows)
}

func (s *Store) UpdatePayAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE job_tickets SET pay_amount = $2, updated_at = now() WHERE id = $1
  `, id, amount)
	return err
}

func collectTickets(rows pgx.Rows) ([]Ticket, error) {
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.InstallDate, &t.TicketNumber, &t.InstallType,
		&t.Spans, &t.ConduitFt, &t.JacksInstalled, &t.CopperRemoved, &t.ExtraPerDiem, &t.PayAmount,
		&t.CustomerName, &t.Address, &t.Notes, &t.Source, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
