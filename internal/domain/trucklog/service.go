package trucklog

import (
	"context"
	"errors"
	"strings"
	"time"

	"fieldpay/internal/domain/pay"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Upsert(ctx context.Context, l Log) (Log, error) {
	if l.LogDate.IsZero() {
		return Log{}, ErrMissingDate
	}
	if l.Odometer < 0 || l.Mileage < 0 || l.Gallons.IsNegative() || l.FuelCost.IsNegative() {
		return Log{}, ErrNegativeValue
	}
	l.LogDate = pay.DateOf(l.LogDate)
	l.Notes = strings.TrimSpace(l.Notes)

	existing, err := s.store.Get(ctx, l.UserID, l.LogDate)
	switch {
	case err == nil && existing.Locked:
		return Log{}, ErrLogLocked
	case err != nil && !errors.Is(err, ErrLogNotFound):
		return Log{}, err
	}
	return s.store.Upsert(ctx, l)
}

func (s *Service) Lock(ctx context.Context, userID string, date time.Time) error {
	return s.store.Lock(ctx, userID, pay.DateOf(date))
}

// ListRange returns the logs in range with derived miles and MPG.
func (s *Service) ListRange(ctx context.Context, userID string, from, to time.Time) ([]Entry, error) {
	from, to = pay.DateOf(from), pay.DateOf(to)
	logs, err := s.store.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	var prev *Log
	last, err := s.store.LastBefore(ctx, userID, from)
	switch {
	case err == nil:
		prev = &last
	case !errors.Is(err, ErrLogNotFound):
		return nil, err
	}
	return Derive(prev, logs), nil
}
