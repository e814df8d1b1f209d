// Package catalog defines the product source the storefront reads from.
package catalog

import (
	"context"
	"errors"
)

// Product is one catalog record. Stock <= 0 means no stock bound is known.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Stock       int     `json:"stock,omitempty"`
}

// Category is a catalog grouping shown in the filter dropdown.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Filter carries the list query parameters. They are passed through to the
// source as-is; filtering semantics belong to the catalog backend.
type Filter struct {
	Category string
	Search   string
}

// Source defines behavior for reading products.
type Source interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Categories(ctx context.Context) ([]Category, error)
}

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")
