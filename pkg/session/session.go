// Package session ties authenticated sessions to their cart instances.
// One cart store exists per session, created at login and torn down at
// logout; views receive the store by reference, never through ambient
// lookup.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront/pkg/cart"
)

// ErrNoSession indicates the session ID is unknown or expired.
var ErrNoSession = errors.New("no such session")

// TokenStore persists session tokens. The Redis implementation is the
// production one; tests use a fake.
type TokenStore interface {
	Set(ctx context.Context, sid, username string) error
	Get(ctx context.Context, sid string) (string, error)
	Del(ctx context.Context, sid string) error
}

// Manager owns the session registry and each session's cart.
type Manager struct {
	tokens  TokenStore
	pricing cart.Pricing

	mu    sync.Mutex
	carts map[string]*cart.Store
}

// NewManager creates a Manager issuing carts with the given pricing.
func NewManager(tokens TokenStore, pricing cart.Pricing) *Manager {
	return &Manager{
		tokens:  tokens,
		pricing: pricing,
		carts:   make(map[string]*cart.Store),
	}
}

// Start opens a session for username and returns its ID. The session's
// cart is created empty here.
func (m *Manager) Start(ctx context.Context, username string) (string, error) {
	sid := uuid.NewString()
	if err := m.tokens.Set(ctx, sid, username); err != nil {
		return "", fmt.Errorf("storing session token: %w", err)
	}

	m.mu.Lock()
	m.carts[sid] = cart.NewStore(m.pricing)
	m.mu.Unlock()
	return sid, nil
}

// Validate resolves the session ID to its username.
func (m *Manager) Validate(ctx context.Context, sid string) (string, error) {
	return m.tokens.Get(ctx, sid)
}

// Cart returns the session's cart store, creating it if the session token
// outlived the in-process registry (for example after a restart).
func (m *Manager) Cart(sid string) *cart.Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.carts[sid]
	if !ok {
		s = cart.NewStore(m.pricing)
		m.carts[sid] = s
	}
	return s
}

// End closes the session and tears its cart down.
func (m *Manager) End(ctx context.Context, sid string) error {
	if err := m.tokens.Del(ctx, sid); err != nil {
		return fmt.Errorf("deleting session token: %w", err)
	}

	m.mu.Lock()
	delete(m.carts, sid)
	m.mu.Unlock()
	return nil
}
