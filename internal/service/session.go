package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"pos/internal/domain"
)

const defaultSessionIdleTTL = 30 * time.Minute

// SessionRegistry хранит по одному оформлению продажи на сессию пользователя
type SessionRegistry struct {
	checkouts *CheckoutService
	idleTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	checkout *Checkout
	lastSeen time.Time
}

// SessionOption configures a SessionRegistry.
type SessionOption func(*SessionRegistry)

// WithIdleTTL overrides how long an untouched session survives. Zero or less disables expiry.
func WithIdleTTL(d time.Duration) SessionOption {
	return func(r *SessionRegistry) {
		r.idleTTL = d
	}
}

func NewSessionRegistry(checkouts *CheckoutService, opts ...SessionOption) *SessionRegistry {
	r := &SessionRegistry{
		checkouts: checkouts,
		idleTTL:   defaultSessionIdleTTL,
		sessions:  make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *SessionRegistry) now() time.Time { return r.checkouts.clock.Now() }

func (r *SessionRegistry) expired(e *sessionEntry, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(e.lastSeen) >= r.idleTTL
}

// Open starts a new session with an empty checkout.
func (r *SessionRegistry) Open() (string, *Checkout) {
	id := uuid.NewString()
	co := r.checkouts.NewCheckout()
	r.mu.Lock()
	r.sessions[id] = &sessionEntry{checkout: co, lastSeen: r.now()}
	r.mu.Unlock()
	return id, co
}

// Get returns the session's checkout and marks the session as active.
func (r *SessionRegistry) Get(id string) (*Checkout, error) {
	now := r.now()
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok && r.expired(e, now) {
		delete(r.sessions, id)
		r.mu.Unlock()
		e.checkout.Cancel()
		return nil, domain.NotFoundf("session %q", id)
	}
	defer r.mu.Unlock()
	if !ok {
		return nil, domain.NotFoundf("session %q", id)
	}
	e.lastSeen = now
	return e.checkout, nil
}

// Close cancels the session's checkout and forgets it.
func (r *SessionRegistry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return domain.NotFoundf("session %q", id)
	}
	e.checkout.Cancel()
	return nil
}

// Sweep drops every session idle for at least the TTL and returns how many went.
func (r *SessionRegistry) Sweep() int {
	now := r.now()
	var dropped []*Checkout
	r.mu.Lock()
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
			dropped = append(dropped, e.checkout)
		}
	}
	r.mu.Unlock()
	for _, co := range dropped {
		co.Cancel()
	}
	return len(dropped)
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if r.idleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Info().Int("count", n).Msg("idle sessions expired")
			}
		}
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
