package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Repository persists whole carts as a single slot per session, mirroring the
// one key-value write the storefront performs after every mutation.
// Consumers define this interface, not the storage implementation.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
