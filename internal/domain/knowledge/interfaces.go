package knowledge

import "context"

// Repository persists FAQ entries.
type Repository interface {
	Create(ctx context.Context, entry *FAQEntry) error
	Update(ctx context.Context, entry *FAQEntry) error
	List(ctx context.Context) ([]FAQEntry, error)
	Count(ctx context.Context) (int, error)
}
