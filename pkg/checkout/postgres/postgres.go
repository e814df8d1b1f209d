// Package postgres persists orders in PostgreSQL. The schema is managed
// with file migrations under migrations/.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"storefront/pkg/checkout"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	db *sql.DB
}

// New creates a PostgreSQL repository.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// RunMigrations applies pending schema migrations from dir.
func (r *Repository) RunMigrations(dir string) error {
	driver, err := migratepg.WithInstance(r.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Create inserts a new order. Customer and line items are stored as JSONB.
func (r *Repository) Create(ctx context.Context, o checkout.Order) error {
	customer, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (id, customer, items, total_amount, shipping_cost, tax_amount, payment_method, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, customer, items, o.TotalAmount, o.ShippingCost, o.TaxAmount, o.PaymentMethod, o.CreatedAt)
	return err
}

// Get retrieves an order by ID.
func (r *Repository) Get(ctx context.Context, id string) (checkout.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, customer, items, total_amount, shipping_cost, tax_amount, payment_method, created_at
		 FROM orders WHERE id=$1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return checkout.Order{}, checkout.ErrNotFound
	}
	return o, err
}

// List fetches all orders, newest first.
func (r *Repository) List(ctx context.Context) ([]checkout.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer, items, total_amount, shipping_cost, tax_amount, payment_method, created_at
		 FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []checkout.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (checkout.Order, error) {
	var o checkout.Order
	var customer, items []byte
	if err := s.Scan(&o.ID, &customer, &items, &o.TotalAmount, &o.ShippingCost, &o.TaxAmount, &o.PaymentMethod, &o.CreatedAt); err != nil {
		return checkout.Order{}, err
	}
	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return checkout.Order{}, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return checkout.Order{}, fmt.Errorf("unmarshal items: %w", err)
	}
	return o, nil
}
