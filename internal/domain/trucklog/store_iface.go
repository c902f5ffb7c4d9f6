package trucklog

import (
	"context"
	"time"
)

type StoreAPI interface {
	Get(ctx context.Context, userID string, date time.Time) (Log, error)
	Upsert(ctx context.Context, log Log) (Log, error)
	Lock(ctx context.Context, userID string, date time.Time) error
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]Log, error)
	LastBefore(ctx context.Context, userID string, date time.Time) (Log, error)
}
