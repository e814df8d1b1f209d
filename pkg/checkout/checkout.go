// Package checkout builds and persists orders from a session's cart.
package checkout

import (
	"context"
	"errors"
	"time"
)

// Customer holds the shipping form fields collected at checkout.
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// OrderItem is one purchased line, copied from the cart at submission time.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is a submitted order.
type Order struct {
	ID            string      `json:"id"`
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	TotalAmount   float64     `json:"totalAmount"`
	ShippingCost  float64     `json:"shippingCost"`
	TaxAmount     float64     `json:"taxAmount"`
	PaymentMethod string      `json:"paymentMethod"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Payment methods accepted at checkout.
const (
	PaymentCreditCard   = "credit-card"
	PaymentPayPal       = "paypal"
	PaymentBankTransfer = "bank-transfer"
)

// ValidPaymentMethod reports whether m is an accepted payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

// Repository defines behavior for persisting orders.
type Repository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
}

var (
	// ErrNotFound indicates the requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrEmptyCart indicates a submission attempt with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidPayment indicates an unknown payment method.
	ErrInvalidPayment = errors.New("invalid payment method")
)
