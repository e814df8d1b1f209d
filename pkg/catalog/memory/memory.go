// Package memory implements an in-memory catalog source. It is selected
// explicitly through configuration for development and tests; it is never
// used as a fallback when an upstream catalog fails.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/pkg/catalog"
)

// Source provides an in-memory implementation of catalog.Source.
type Source struct {
	mu       sync.RWMutex
	products []catalog.Product
	index    map[string]int
}

// New creates a source seeded with the given products.
func New(products []catalog.Product) *Source {
	s := &Source{index: make(map[string]int, len(products))}
	for _, p := range products {
		s.index[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

// List returns products matching the filter, in seed order.
func (s *Source) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Get retrieves a product by ID.
func (s *Source) Get(ctx context.Context, id string) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return s.products[i], nil
}

// Categories returns the distinct categories of the seeded products.
func (s *Source) Categories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []catalog.Category
	for _, p := range s.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, catalog.Category{
			ID:   strings.ToLower(strings.ReplaceAll(p.Category, " ", "-")),
			Name: p.Category,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
