package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel/trace"

	_ "storefront/docs"
	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	catalogcache "storefront/pkg/catalog/cache"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/catalog/upstream"
	"storefront/pkg/checkout"
	checkoutmem "storefront/pkg/checkout/memory"
	checkoutpg "storefront/pkg/checkout/postgres"
	"storefront/pkg/logger"
	"storefront/pkg/otel"
	"storefront/pkg/session"
)

var (
	log      *logger.Logger
	tracer   trace.Tracer
	sessions *session.Manager
	products catalog.Source
	orders   checkout.Repository
	placer   *checkout.Service
)

// @title Storefront API
// @version 1.0
// @description Storefront backend: catalog browsing, session carts, order submission
// @host localhost:8443
// @BasePath /
func main() {
	log = logger.New(os.Stdout, logger.LevelInfo, "storefront", otel.GetTraceID)
	ctx := context.Background()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "storefront",
		Host:        getEnv("OTEL_HOST", "localhost:4317"),
		Probability: 1.0,
	})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdown(ctx)
	tracer = tp.Tracer("storefront")

	redisClient := redis.NewClient(&redis.Options{Addr: getEnv("REDIS_ADDR", "localhost:6379")})
	defer redisClient.Close()

	pricing := cart.Pricing{
		ShippingCost: getEnvFloat("SHIPPING_COST", 5.99),
		TaxRate:      getEnvFloat("TAX_RATE", 0.08),
	}
	sessions = session.NewManager(session.NewRedisTokens(redisClient, time.Hour), pricing)

	products, err = buildCatalog(redisClient)
	if err != nil {
		log.Error(ctx, "init catalog", "error", err)
		os.Exit(1)
	}

	orders, err = buildOrderRepository(ctx)
	if err != nil {
		log.Error(ctx, "init order repository", "error", err)
		os.Exit(1)
	}
	placer = checkout.NewService(orders, log)

	r := mux.NewRouter()
	r.Use(traceMiddleware)
	r.HandleFunc("/login", loginHandler).Methods(http.MethodPost)
	r.HandleFunc("/products", listProductsHandler).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", getProductHandler).Methods(http.MethodGet)
	r.HandleFunc("/categories", listCategoriesHandler).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/logout", logoutHandler).Methods(http.MethodPost)
	authed.HandleFunc("/cart", getCartHandler).Methods(http.MethodGet)
	authed.HandleFunc("/cart/items", addCartItemHandler).Methods(http.MethodPost)
	authed.HandleFunc("/cart/items/{productId}", updateCartItemHandler).Methods(http.MethodPut)
	authed.HandleFunc("/cart/items/{productId}", removeCartItemHandler).Methods(http.MethodDelete)
	authed.HandleFunc("/orders", placeOrderHandler).Methods(http.MethodPost)
	authed.HandleFunc("/orders", listOrdersHandler).Methods(http.MethodGet)
	authed.HandleFunc("/orders/{id}", getOrderHandler).Methods(http.MethodGet)

	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	addr := getEnv("API_ADDR", ":8443")
	log.Info(ctx, "listening", "addr", addr)
	err = http.ListenAndServeTLS(addr, getEnv("TLS_CERT", "certs/server.crt"), getEnv("TLS_KEY", "certs/server.key"), r)
	log.Error(ctx, "server closed", "error", err)
}

// buildCatalog selects the product source from configuration. The memory
// catalog is a deliberate choice for development; upstream failures are
// never papered over with seeded data.
func buildCatalog(redisClient *redis.Client) (catalog.Source, error) {
	switch backend := getEnv("CATALOG_BACKEND", "memory"); backend {
	case "upstream":
		base := os.Getenv("CATALOG_UPSTREAM_URL")
		if base == "" {
			return nil, fmt.Errorf("CATALOG_UPSTREAM_URL must be set")
		}
		log.Info(context.Background(), "catalog source", "backend", "upstream", "url", base)
		return upstream.New(base, catalogcache.NewRedisCache(redisClient), log), nil
	case "memory":
		log.Info(context.Background(), "catalog source", "backend", "memory")
		return catalogmem.New(seedProducts()), nil
	default:
		return nil, fmt.Errorf("unknown CATALOG_BACKEND %q", backend)
	}
}

// buildOrderRepository persists orders in Postgres when DATABASE_URL is
// set, otherwise in memory.
func buildOrderRepository(ctx context.Context) (checkout.Repository, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Info(ctx, "order repository", "backend", "memory")
		return checkoutmem.New(), nil
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	repo := checkoutpg.New(db)
	if err := repo.RunMigrations(getEnv("MIGRATIONS_PATH", "pkg/checkout/postgres/migrations")); err != nil {
		return nil, err
	}
	log.Info(ctx, "order repository", "backend", "postgres")
	return repo, nil
}

// seedProducts is the development catalog.
func seedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "1", Title: "Wireless Headphones", Price: 99.99, Category: "Electronics", Image: "https://via.placeholder.com/300x200?text=Headphones", Description: "High-quality wireless headphones with noise cancellation.", Stock: 25},
		{ID: "2", Title: "Smart Watch", Price: 199.99, Category: "Electronics", Image: "https://via.placeholder.com/300x200?text=Smart+Watch", Description: "Feature-rich smartwatch with health monitoring.", Stock: 12},
		{ID: "3", Title: "Running Shoes", Price: 89.99, Category: "Sports", Image: "https://via.placeholder.com/300x200?text=Shoes", Description: "Comfortable running shoes for all terrains.", Stock: 40},
		{ID: "4", Title: "Coffee Maker", Price: 79.99, Category: "Home & Kitchen", Image: "https://via.placeholder.com/300x200?text=Coffee+Maker", Description: "Automatic coffee maker with timer function.", Stock: 8},
		{ID: "5", Title: "Backpack", Price: 49.99, Category: "Fashion", Image: "https://via.placeholder.com/300x200?text=Backpack", Description: "Durable backpack with multiple compartments.", Stock: 30},
		{ID: "6", Title: "Desk Lamp", Price: 29.99, Category: "Home & Kitchen", Image: "https://via.placeholder.com/300x200?text=Lamp", Description: "Adjustable LED desk lamp with touch controls.", Stock: 3},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Error(context.Background(), "invalid float env", "key", key, "value", v)
		os.Exit(1)
	}
	return f
}

