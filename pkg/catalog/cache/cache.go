// Package cache provides a read-through cache for catalog products.
package cache

import (
	"context"
	"errors"

	"storefront/pkg/catalog"
)

// ProductCache stores catalog products keyed by product ID.
type ProductCache interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
	Set(ctx context.Context, p catalog.Product) error
	Delete(ctx context.Context, id string) error
}

// ErrCacheMiss indicates the product is not cached.
var ErrCacheMiss = errors.New("cache miss")
