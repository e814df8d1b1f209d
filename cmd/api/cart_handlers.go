package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/otel"
)

// cartResponse is the cart view payload: line items, derived summary and
// the badge count, all from one consistent snapshot.
type cartResponse struct {
	Items     []cart.Item  `json:"items"`
	Summary   cart.Summary `json:"summary"`
	ItemCount int          `json:"itemCount"`
}

func writeCart(w http.ResponseWriter, status int, snap cart.Snapshot) {
	count := 0
	for _, it := range snap.Items {
		count += it.Quantity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(cartResponse{Items: snap.Items, Summary: snap.Summary, ItemCount: count})
}

// getCartHandler returns the session's cart snapshot.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartResponse
// @Security ApiKeyAuth
// @Router /cart [get]
func getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	store := sessions.Cart(sessionID(ctx))
	writeCart(w, http.StatusOK, store.Snapshot())
}

// addCartItemRequest asks for a product to be added to the cart. Quantity
// defaults to 1 when omitted; an explicit quantity below 1 is rejected.
type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// addCartItemHandler adds a product to the cart, merging with an existing
// line item and clamping to the product's stock bound.
// @Summary Add cart item
// @Accept json
// @Produce json
// @Param item body addCartItemRequest true "Product and quantity"
// @Success 201 {object} cartResponse
// @Security ApiKeyAuth
// @Router /cart/items [post]
func addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addCartItemHandler")
	defer span.End()

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	p, err := products.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get product", "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}

	store := sessions.Cart(sessionID(ctx))
	_, err = store.AddItem(cart.Product{
		ID:    p.ID,
		Title: p.Title,
		Price: p.Price,
		Image: p.Image,
		Stock: p.Stock,
	}, quantity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeCart(w, http.StatusCreated, store.Snapshot())
}

// updateCartItemRequest sets a line item's absolute quantity.
type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartItemHandler sets the quantity of a line item. A quantity below
// one removes the line, same as a delete.
// @Summary Update cart item quantity
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param item body updateCartItemRequest true "New quantity"
// @Success 200 {object} cartResponse
// @Security ApiKeyAuth
// @Router /cart/items/{productId} [put]
func updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCartItemHandler")
	defer span.End()

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	store := sessions.Cart(sessionID(ctx))
	if err := store.UpdateQuantity(mux.Vars(r)["productId"], req.Quantity); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeCart(w, http.StatusOK, store.Snapshot())
}

// removeCartItemHandler removes a line item. Removing an absent product
// succeeds.
// @Summary Remove cart item
// @Param productId path string true "Product ID"
// @Success 204
// @Security ApiKeyAuth
// @Router /cart/items/{productId} [delete]
func removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	store := sessions.Cart(sessionID(ctx))
	store.RemoveItem(mux.Vars(r)["productId"])
	w.WriteHeader(http.StatusNoContent)
}
