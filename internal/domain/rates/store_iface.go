package rates

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, key string) (Entry, error)
	Upsert(ctx context.Context, key string, amount decimal.Decimal, description string) error
	InsertIfAbsent(ctx context.Context, entry Entry) (bool, error)
	Delete(ctx context.Context, key string) error
}
