package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/pkg/cart"
	"storefront/pkg/logger"
)

// Service turns a cart into a persisted order.
type Service struct {
	repo Repository
	log  *logger.Logger
}

// NewService creates a checkout service.
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// PlaceOrder builds the order payload from the cart's current snapshot and
// persists it. The cart is cleared only after the repository confirms the
// write; on any failure the cart is left untouched.
func (s *Service) PlaceOrder(ctx context.Context, store *cart.Store, customer Customer, paymentMethod string) (Order, error) {
	if !ValidPaymentMethod(paymentMethod) {
		return Order{}, ErrInvalidPayment
	}

	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	items := make([]OrderItem, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	o := Order{
		ID:            uuid.NewString(),
		Customer:      customer,
		Items:         items,
		TotalAmount:   snap.Summary.Total,
		ShippingCost:  snap.Summary.ShippingCost,
		TaxAmount:     snap.Summary.TaxAmount,
		PaymentMethod: paymentMethod,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return Order{}, fmt.Errorf("persisting order: %w", err)
	}

	store.Clear()
	s.log.Info(ctx, "order placed", "order_id", o.ID, "total", o.TotalAmount, "items", len(o.Items))
	return o, nil
}
