// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"
)

// Product represents a product entity in the store.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*Product, error)

	// Snapshot returns a copy of all products in insertion order.
	// Returns an empty slice if no products exist.
	Snapshot(ctx context.Context) ([]Product, error)

	// Insert appends a new product to the collection.
	// The caller guarantees uniqueness of the product ID.
	Insert(ctx context.Context, product Product) error

	// Replace overwrites an existing product in place, preserving its position.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Replace(ctx context.Context, id string, product Product) error

	// Remove deletes a product by its ID and returns the removed record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Remove(ctx context.Context, id string) (*Product, error)
}
