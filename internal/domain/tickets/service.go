package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fieldpay/internal/domain/pay"
	"fieldpay/internal/domain/rates"
)

type RateLoader interface {
	Load(ctx context.Context) (rates.Table, error)
}

type Service struct {
	store StoreAPI
	rates RateLoader
}

func NewService(store StoreAPI, rates RateLoader) *Service {
	return &Service{store: store, rates: rates}
}

func Validate(t Ticket) error {
	if t.InstallDate.IsZero() {
		return ErrMissingInstallDate
	}
	if t.InstallType == "" {
		return ErrMissingInstallType
	}
	if t.TicketNumber == "" && pay.IsBillable(t.InstallType) {
		return ErrMissingTicketNumber
	}
	return nil
}

// Quote prices a ticket against the current rate card without saving it.
func (s *Service) Quote(ctx context.Context, t Ticket) (pay.TicketPay, error) {
	table, err := s.rates.Load(ctx)
	if err != nil {
		return pay.TicketPay{}, fmt.Errorf("load rates: %w", err)
	}
	return pay.Price(t.JobRecord, table), nil
}

func (s *Service) Create(ctx context.Context, t Ticket) (Ticket, error) {
	if err := Validate(t); err != nil {
		return Ticket{}, err
	}
	table, err := s.rates.Load(ctx)
	if err != nil {
		return Ticket{}, fmt.Errorf("load rates: %w", err)
	}
	if t.Source == "" {
		t.Source = SourceManual
	}
	t.PayAmount = pay.Total(t.JobRecord, table)
	id, err := s.store.Create(ctx, t)
	if err != nil {
		return Ticket{}, err
	}
	t.ID = id
	return t, nil
}

// CreateBatch prices every ticket with a single rate card snapshot.
// Failures are returned per index; the remaining tickets are still stored.
func (s *Service) CreateBatch(ctx context.Context, list []Ticket) ([]Ticket, map[int]error, error) {
	table, err := s.rates.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load rates: %w", err)
	}
	created := make([]Ticket, 0, len(list))
	failed := map[int]error{}
	for i, t := range list {
		if err := Validate(t); err != nil {
			failed[i] = err
			continue
		}
		t.PayAmount = pay.Total(t.JobRecord, table)
		id, err := s.store.Create(ctx, t)
		if err != nil {
			failed[i] = err
			continue
		}
		t.ID = id
		created = append(created, t)
	}
	return created, failed, nil
}

func (s *Service) Update(ctx context.Context, t Ticket) (Ticket, error) {
	if err := Validate(t); err != nil {
		return Ticket{}, err
	}
	existing, err := s.store.Get(ctx, t.UserID, t.ID)
	if err != nil {
		return Ticket{}, err
	}
	table, err := s.rates.Load(ctx)
	if err != nil {
		return Ticket{}, fmt.Errorf("load rates: %w", err)
	}
	t.Source = existing.Source
	t.CreatedAt = existing.CreatedAt
	t.PayAmount = pay.Total(t.JobRecord, table)
	if err := s.store.Update(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.store.Delete(ctx, userID, id)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Ticket, error) {
	return s.store.Get(ctx, userID, id)
}

func (s *Service) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Ticket, error) {
	return s.store.ListRange(ctx, userID, pay.DateOf(from), pay.DateOf(to))
}

// Reprice refreshes the cached pay amount of every ticket in range from its
// raw fields and the current rate card. Unchanged amounts are not written.
func (s *Service) Reprice(ctx context.Context, from, to time.Time) (RepriceResult, error) {
	table, err := s.rates.Load(ctx)
	if err != nil {
		return RepriceResult{}, fmt.Errorf("load rates: %w", err)
	}
	list, err := s.store.ListAllRange(ctx, pay.DateOf(from), pay.DateOf(to))
	if err != nil {
		return RepriceResult{}, err
	}
	var res RepriceResult
	for _, t := range list {
		res.Checked++
		amount := pay.Total(t.JobRecord, table)
		if amount.Equal(t.PayAmount) {
			continue
		}
		if err := s.store.UpdatePayAmount(ctx, t.ID, amount); err != nil {
			slog.Warn("reprice ticket failed", "ticket", t.ID, "err", err)
			continue
		}
		res.Updated++
	}
	return res, nil
}
