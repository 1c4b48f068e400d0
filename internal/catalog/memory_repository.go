package catalog

import (
	"context"
	"sync"
)

// MemoryRepository holds the catalog in memory. Used by tests and by
// deployments that do not ship the sqlite database.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []Product
	byID     map[int64]int
}

func NewMemoryRepository(products []Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(r.products, products)
	for i, p := range r.products {
		r.byID[p.ID] = i
	}
	return r
}

func (r *MemoryRepository) List(_ context.Context, category Category) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := r.products[i]
	return &p, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
