package imports

import "context"

type StoreAPI interface {
	HasImported(ctx context.Context, userID, checksum string) (bool, error)
	Create(ctx context.Context, batch Batch) error
	List(ctx context.Context, userID string, limit, offset int) ([]Batch, error)
}
