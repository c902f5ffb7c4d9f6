package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.List(ctx)
}

// Load snapshots the current rate card for one request.
func (s *Service) Load(ctx context.Context) (Table, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return Table{}, fmt.Errorf("load rate card: %w", err)
	}
	return NewTable(entries), nil
}

// Set validates and writes a rate, returning the previous entry when one existed.
func (s *Service) Set(ctx context.Context, key string, amount decimal.Decimal, description string) (*Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrInvalidKey
	}
	if amount.IsNegative() {
		return nil, ErrNegativeRate
	}

	var previous *Entry
	existing, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		previous = &existing
		if strings.TrimSpace(description) == "" {
			description = existing.Description
		}
	case !errors.Is(err, ErrEntryNotFound):
		return nil, err
	}

	if err := s.store.Upsert(ctx, key, amount, strings.TrimSpace(description)); err != nil {
		return nil, err
	}
	return previous, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, strings.TrimSpace(key))
}

// SeedDefaults inserts the default entries that are not configured yet.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	for _, entry := range Defaults {
		ok, err := s.store.InsertIfAbsent(ctx, entry)
		if err != nil {
			return inserted, fmt.Errorf("seed rate %s: %w", entry.Key, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}
