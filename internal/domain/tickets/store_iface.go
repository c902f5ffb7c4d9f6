package tickets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	Create(ctx context.Context, t Ticket) (string, error)
	Update(ctx context.Context, t Ticket) error
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (Ticket, error)
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]Ticket, error)
	ListAllRange(ctx context.Context, from, to time.Time) ([]Ticket, error)
	UpdatePayAmount(ctx context.Context, id string, amount decimal.Decimal) error
}
