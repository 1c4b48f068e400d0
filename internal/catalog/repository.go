package catalog

import "context"

// Repository defines read operations for the product catalog.
// Consumers define this interface, not the storage implementation.
type Repository interface {
	List(ctx context.Context, category Category) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Close() error
}
