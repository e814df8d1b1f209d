// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/checkout"
)

// Repository provides an in-memory implementation of checkout.Repository.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]checkout.Order
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{orders: make(map[string]checkout.Order)}
}

// Create stores the order.
func (r *Repository) Create(ctx context.Context, o checkout.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (checkout.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return checkout.Order{}, checkout.ErrNotFound
	}
	return o, nil
}

// List returns all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]checkout.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]checkout.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
