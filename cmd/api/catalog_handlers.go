package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"storefront/pkg/catalog"
	"storefront/pkg/otel"
)

// listProductsHandler lists catalog products.
// @Summary List products
// @Produce json
// @Param category query string false "Category filter"
// @Param search query string false "Title search"
// @Success 200 {array} catalog.Product
// @Router /products [get]
func listProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listProductsHandler")
	defer span.End()

	f := catalog.Filter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	list, err := products.List(ctx, f)
	if err != nil {
		log.Error(ctx, "list products", "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"products": list})
}

// getProductHandler retrieves one product.
// @Summary Get product
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} catalog.Product
// @Router /products/{id} [get]
func getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getProductHandler")
	defer span.End()

	p, err := products.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Error(ctx, "get product", "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"product": p})
}

// listCategoriesHandler lists catalog categories.
// @Summary List categories
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /categories [get]
func listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "listCategoriesHandler")
	defer span.End()

	cats, err := products.Categories(ctx)
	if err != nil {
		log.Error(ctx, "list categories", "error", err)
		http.Error(w, "catalog unavailable", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"categories": cats})
}
