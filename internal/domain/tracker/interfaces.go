package tracker

import "context"

// Repository persists tracked items. Get returns
// repository.ErrNotFound (wrapped by implementations) for unknown
// numbers; services treat that as "not yet tracked".
type Repository interface {
	Get(ctx context.Context, number int) (*TrackedItem, error)
	Put(ctx context.Context, item *TrackedItem) error
	ListUnresolved(ctx context.Context) ([]TrackedItem, error)
}
