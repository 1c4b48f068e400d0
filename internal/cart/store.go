package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/apexfit/storefront/internal/catalog"
	"github.com/apexfit/storefront/internal/schedule"
)

// Store owns one session's cart. It is the only writer: every mutation runs
// under the store lock and is written through to the repository before it
// returns.
type Store struct {
	mu        sync.Mutex
	sessionID string
	cart      *Cart

	repo  Repository
	sched *schedule.Scheduler
	log   *slog.Logger

	drawerOpen bool
	drawerTask *schedule.Task
	autoClose  time.Duration
}

// NewStore seeds the in-memory cart from the repository slot. A missing slot
// starts empty; a failed or malformed read also starts empty and logs a
// warning, so a corrupt blob can never strand the session.
func NewStore(ctx context.Context, sessionID string, repo Repository, sched *schedule.Scheduler, log *slog.Logger, autoClose time.Duration) *Store {
	s := &Store{
		sessionID: sessionID,
		repo:      repo,
		sched:     sched,
		log:       log,
		autoClose: autoClose,
	}

	loaded, err := repo.Load(ctx, sessionID)
	switch {
	case err == nil:
		s.cart = loaded
	case errors.Is(err, ErrCartNotFound):
		s.cart = emptyCart(sessionID)
	default:
		log.Warn("cart load failed, starting empty", "session_id", sessionID, "error", err)
		s.cart = emptyCart(sessionID)
	}

	return s
}

func emptyCart(sessionID string) *Cart {
	now := time.Now()
	return &Cart{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add merges into an existing (product, color) line or appends a new one
// carrying a snapshot of the product's name, price and image. It opens the
// cart drawer and (re)schedules its auto-close.
func (s *Store) Add(ctx context.Context, p catalog.Product, quantity int, color string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if color == "" {
		color = catalog.DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.cart.findLine(p.ID, color); i >= 0 {
		s.cart.Lines[i].Quantity += quantity
	} else {
		s.cart.Lines = append(s.cart.Lines, Line{
			ProductID: p.ID,
			Color:     color,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
	}

	s.openDrawerLocked()
	return s.saveLocked(ctx)
}

// Remove deletes the matching line. Removing an absent pair is a no-op.
func (s *Store) Remove(ctx context.Context, productID int64, color string) error {
	if color == "" {
		color = catalog.DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.cart.findLine(productID, color)
	if i < 0 {
		return nil
	}
	s.cart.Lines = append(s.cart.Lines[:i], s.cart.Lines[i+1:]...)
	return s.saveLocked(ctx)
}

// UpdateQuantity overwrites the line's quantity. Quantities below 1 are
// rejected, not clamped.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int, color string) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if color == "" {
		color = catalog.DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.cart.findLine(productID, color)
	if i < 0 {
		return ErrCartNotFound
	}
	s.cart.Lines[i].Quantity = quantity
	return s.saveLocked(ctx)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Lines = nil
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	s.cart.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, s.cart); err != nil {
		s.log.Error("cart save failed", "session_id", s.sessionID, "error", err)
		return err
	}
	return nil
}

// Total is recomputed on every read.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Lines returns the cart lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.cart.Lines))
	copy(out, s.cart.Lines)
	return out
}

func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *s.cart
	c.Lines = make([]Line, len(s.cart.Lines))
	copy(c.Lines, s.cart.Lines)
	return c
}

func (s *Store) DrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawerOpen
}

// SetDrawerOpen is the explicit user interaction: it cancels the pending
// auto-close either way.
func (s *Store) SetDrawerOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelDrawerTaskLocked()
	s.drawerOpen = open
}

func (s *Store) openDrawerLocked() {
	s.cancelDrawerTaskLocked()
	s.drawerOpen = true
	s.drawerTask = s.sched.After(s.autoClose, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.drawerOpen = false
		s.drawerTask = nil
	})
}

func (s *Store) cancelDrawerTaskLocked() {
	if s.drawerTask != nil {
		s.drawerTask.Cancel()
		s.drawerTask = nil
	}
}

// Teardown cancels the pending drawer task. The persisted cart slot is left
// intact for the session key.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDrawerTaskLocked()
}
