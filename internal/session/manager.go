// Package session ties one cart store and one checkout wizard to each
// browsing session. Stores are never ambient globals; everything reachable
// from a request hangs off the session built here.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/checkout"
	"github.com/apexfit/storefront/internal/payment"
	"github.com/apexfit/storefront/internal/schedule"
)

const sweepInterval = time.Minute

type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Wizard

	sched *schedule.Scheduler

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// Teardown cancels every scheduled task owned by the session. The persisted
// cart slot stays put; a returning session picks it back up.
func (s *Session) Teardown() {
	s.Checkout.Teardown()
	s.Cart.Teardown()
	s.sched.StopAll()
}

// Options carries the per-session construction knobs.
type Options struct {
	DrawerAutoClose       time.Duration
	ConfirmationAutoClose time.Duration
	DeliveryFee           float64
	IdleTTL               time.Duration
}

type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group // Prevents duplicate builds for one session

	cartRepo cart.Repository
	gateway  payment.Gateway
	opts     Options
	log      *slog.Logger

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewManager(cartRepo cart.Repository, gateway payment.Gateway, opts Options, log *slog.Logger) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		cartRepo:  cartRepo,
		gateway:   gateway,
		opts:      opts,
		log:       log,
		stopSweep: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// NewSessionID mints the cookie value for a first-time visitor.
func NewSessionID() string {
	return uuid.NewString()
}

// Get returns the session's store and wizard, building them on first use.
// Concurrent first requests for the same session collapse into one build.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	v, err, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		m.mu.RLock()
		existing, ok := m.sessions[sessionID]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		sched := schedule.NewScheduler()
		store := cart.NewStore(ctx, sessionID, m.cartRepo, sched, m.log, m.opts.DrawerAutoClose)
		wizard := checkout.NewWizard(sessionID, store, m.gateway, sched, m.log, m.opts.DeliveryFee, m.opts.ConfirmationAutoClose)

		built := &Session{
			ID:       sessionID,
			Cart:     store,
			Checkout: wizard,
			sched:    sched,
			lastSeen: time.Now(),
		}

		m.mu.Lock()
		m.sessions[sessionID] = built
		m.mu.Unlock()

		return built, nil
	})
	if err != nil {
		return nil, err
	}

	s = v.(*Session)
	s.touch()
	return s, nil
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.expireIdle()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Manager) expireIdle() {
	if m.opts.IdleTTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Teardown()
		m.log.Debug("session expired", "session_id", s.ID)
	}
}

// Close stops the sweeper and tears down every live session.
func (m *Manager) Close() {
	close(m.stopSweep)
	m.wg.Wait()

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Teardown()
	}
}
