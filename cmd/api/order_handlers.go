package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/checkout"
	"storefront/pkg/otel"
)

// placeOrderRequest carries the checkout form.
type placeOrderRequest struct {
	Customer      checkout.Customer `json:"customer"`
	PaymentMethod string            `json:"paymentMethod"`
}

// placeOrderHandler submits the session's cart as an order. The cart is
// cleared only when persistence succeeds.
// @Summary Place order
// @Accept json
// @Produce json
// @Param order body placeOrderRequest true "Customer and payment method"
// @Success 201 {object} checkout.Order
// @Security ApiKeyAuth
// @Router /orders [post]
func placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "placeOrderHandler")
	defer span.End()

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	store := sessions.Cart(sessionID(ctx))
	o, err := placer.PlaceOrder(ctx, store, req.Customer, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidPayment):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error(ctx, "place order", "error", err)
			http.Error(w, "order submission failed", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(o)
}

// listOrdersHandler lists submitted orders.
// @Summary List orders
// @Produce json
// @Success 200 {array} checkout.Order
// @Security ApiKeyAuth
// @Router /orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	list, err := orders.List(ctx)
	if err != nil {
		log.Error(ctx, "list orders", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// getOrderHandler retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} checkout.Order
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, err := orders.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, checkout.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get order", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(o)
}
