// Package upstream implements catalog.Source against the external catalog
// API. Lookups are collapsed with singleflight, guarded by a circuit
// breaker, and served from a read-through product cache when one is
// configured. There is no retry policy here; a failed call surfaces to the
// caller.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"storefront/pkg/catalog"
	"storefront/pkg/catalog/cache"
	"storefront/pkg/logger"
)

// Source reads products from the upstream catalog HTTP API.
type Source struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group
	cache   cache.ProductCache
	log     *logger.Logger
}

// New creates an upstream source. cache may be nil to disable caching.
func New(baseURL string, c cache.ProductCache, log *logger.Logger) *Source {
	st := gobreaker.Settings{
		Name:    "catalog-upstream",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing product is an answer, not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, catalog.ErrNotFound)
		},
	}
	return &Source{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[[]byte](st),
		cache:   c,
		log:     log,
	}
}

// List fetches products, passing the filter through as query parameters.
func (s *Source) List(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	u := s.baseURL + "/products"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}

	body, err := s.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Products []catalog.Product `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return resp.Products, nil
}

// Get fetches one product, reading through the cache. Concurrent lookups
// of the same ID share a single upstream call.
func (s *Source) Get(ctx context.Context, id string) (catalog.Product, error) {
	if s.cache != nil {
		p, err := s.cache.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn(ctx, "product cache get", "id", id, "error", err)
		}
	}

	v, err, _ := s.sfg.Do(id, func() (any, error) {
		body, err := s.fetch(ctx, s.baseURL+"/products/"+url.PathEscape(id))
		if err != nil {
			return catalog.Product{}, err
		}
		var resp struct {
			Product catalog.Product `json:"product"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return catalog.Product{}, fmt.Errorf("decode product: %w", err)
		}
		if resp.Product.ID == "" {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return resp.Product, nil
	})
	if err != nil {
		return catalog.Product{}, err
	}

	p := v.(catalog.Product)
	if s.cache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, p); err != nil {
				s.log.Warn(ctx, "product cache set", "id", p.ID, "error", err)
			}
		}()
	}
	return p, nil
}

// Categories fetches the category list.
func (s *Source) Categories(ctx context.Context) ([]catalog.Category, error) {
	body, err := s.fetch(ctx, s.baseURL+"/categories")
	if err != nil {
		return nil, err
	}
	var resp struct {
		Categories []catalog.Category `json:"categories"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return resp.Categories, nil
}

func (s *Source) fetch(ctx context.Context, u string) ([]byte, error) {
	return s.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		res, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("catalog request: %w", err)
		}
		defer res.Body.Close()

		switch {
		case res.StatusCode == http.StatusNotFound:
			return nil, catalog.ErrNotFound
		case res.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("catalog responded %d", res.StatusCode)
		}
		return io.ReadAll(res.Body)
	})
}
