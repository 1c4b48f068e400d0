package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryRepository stores serialized carts in a map. Carts survive store
// teardown but not process restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		slots: make(map[string][]byte),
	}
}

func (r *MemoryRepository) Load(_ context.Context, sessionID string) (*Cart, error) {
	r.mu.RLock()
	data, ok := r.slots[sessionID]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrCartNotFound
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return &c, nil
}

func (r *MemoryRepository) Save(_ context.Context, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	r.mu.Lock()
	r.slots[cart.SessionID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.slots, sessionID)
	r.mu.Unlock()
	return nil
}
