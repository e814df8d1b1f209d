// Package cart implements the in-memory shopping cart for one session.
package cart

import (
	"errors"
	"math"
	"sync"
)

// Product is the catalog record handed to AddItem. Title, Price and Image
// are snapshotted into the line item so the cart renders without a second
// catalog lookup. Stock <= 0 means no stock bound.
type Product struct {
	ID    string  `json:"productId"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
	Stock int     `json:"stock,omitempty"`
}

// Item is one product's line in the cart. Quantity is always >= 1; a line
// that would drop below 1 is removed instead.
type Item struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

// Pricing holds the two constants the derived summary needs.
type Pricing struct {
	ShippingCost float64
	TaxRate      float64
}

// Summary is derived from the cart's current contents; it is recomputed on
// every read and never cached.
type Summary struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	TaxAmount    float64 `json:"taxAmount"`
	Total        float64 `json:"total"`
}

// Snapshot is the value handed to subscribers and read by views after each
// mutation.
type Snapshot struct {
	Items   []Item  `json:"items"`
	Summary Summary `json:"summary"`
}

var (
	// ErrInvalidQuantity indicates a requested quantity below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrInvalidPrice indicates a negative product price.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrNotFound indicates the product has no line item in the cart.
	ErrNotFound = errors.New("item not in cart")
)

// Store owns the cart exclusively. All mutations run under one mutex, and
// subscribers are notified before the mutex is released, so every observer
// sees the state of the most recently completed mutation. Subscribers must
// not call back into the Store from their callback.
type Store struct {
	mu      sync.Mutex
	pricing Pricing
	items   []Item
	index   map[string]int
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewStore returns an empty cart using the given pricing constants.
func NewStore(p Pricing) *Store {
	return &Store{
		pricing: p,
		index:   make(map[string]int),
		subs:    make(map[int]func(Snapshot)),
	}
}

// AddItem merges the requested quantity into an existing line item, or
// inserts a new one snapshotting the product's display fields. When the
// product carries a stock bound the resulting quantity is clamped to it.
// Returns the resulting line item.
func (s *Store) AddItem(p Product, quantity int) (Item, error) {
	if quantity < 1 {
		return Item{}, ErrInvalidQuantity
	}
	if p.Price < 0 {
		return Item{}, ErrInvalidPrice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[p.ID]
	if !ok {
		s.items = append(s.items, Item{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  0,
		})
		i = len(s.items) - 1
		s.index[p.ID] = i
	}
	q := s.items[i].Quantity + quantity
	if p.Stock > 0 && q > p.Stock {
		q = p.Stock
	}
	s.items[i].Quantity = q

	it := s.items[i]
	s.notifyLocked()
	return it, nil
}

// UpdateQuantity sets the absolute quantity of an existing line item.
// A quantity below 1 removes the line item, exactly as RemoveItem would.
// Returns ErrNotFound when the product has no line item.
func (s *Store) UpdateQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok {
		return ErrNotFound
	}
	if quantity < 1 {
		s.removeLocked(i)
	} else {
		s.items[i].Quantity = quantity
	}
	s.notifyLocked()
	return nil
}

// RemoveItem deletes the line item if present. Removing an absent product
// is a no-op, not an error.
func (s *Store) RemoveItem(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok {
		return
	}
	s.removeLocked(i)
	s.notifyLocked()
}

// Clear empties the cart unconditionally. Checkout calls it only after the
// order has been confirmed persisted.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]int)
	s.notifyLocked()
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// ItemCount returns the sum of all line item quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Subtotal returns the sum of price*quantity over all line items, rounded
// to cents.
func (s *Store) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

// Summary computes the derived order summary from the current contents.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

// Snapshot returns the items and summary as one consistent value.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Items: s.itemsLocked(), Summary: s.summaryLocked()}
}

// Subscribe registers fn to run synchronously after every completed
// mutation with the resulting snapshot. The returned function cancels the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) removeLocked(i int) {
	delete(s.index, s.items[i].ProductID)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ProductID] = j
	}
}

func (s *Store) itemsLocked() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) subtotalLocked() float64 {
	var sum float64
	for _, it := range s.items {
		sum += it.Price * float64(it.Quantity)
	}
	return roundCents(sum)
}

func (s *Store) summaryLocked() Summary {
	sub := s.subtotalLocked()
	tax := roundCents(sub * s.pricing.TaxRate)
	return Summary{
		Subtotal:     sub,
		ShippingCost: s.pricing.ShippingCost,
		TaxAmount:    tax,
		Total:        roundCents(sub + s.pricing.ShippingCost + tax),
	}
}

func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := Snapshot{Items: s.itemsLocked(), Summary: s.summaryLocked()}
	for _, fn := range s.subs {
		fn(snap)
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
