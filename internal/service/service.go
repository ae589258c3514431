// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	perrors "github.com/shopkit/products-api/internal/errors"
	"github.com/shopkit/products-api/internal/query"
	"github.com/shopkit/products-api/internal/store"
	"github.com/google/uuid"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*ProductDto, error)

	// List applies the query pipeline to a snapshot of the collection and
	// returns the requested page with pagination metadata and filter echo.
	List(ctx context.Context, params query.Params) (*ProductPage, error)

	// Search returns products whose name, description or category contains
	// the query text, case-insensitively.
	// Returns ErrEmptySearchQuery when the query is empty.
	Search(ctx context.Context, q string) ([]ProductDto, error)

	// Stats computes aggregate statistics over the full collection.
	Stats(ctx context.Context) (*StatsDto, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// Update merges the provided fields onto an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID and returns the removed record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) (*ProductDto, error)
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Pointer fields distinguish a missing value from a zero value.
type ProductCreateDto struct {
	Name        string   `json:"name"        validate:"required,notblank"`
	Description string   `json:"description" validate:"required,notblank"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Category    string   `json:"category"    validate:"required,notblank"`
	InStock     *bool    `json:"inStock"     validate:"required"`
}

// ProductUpdateDto represents the data transfer object for updating a product.
// All fields are optional; each present field is validated against the same
// rule as on creation.
type ProductUpdateDto struct {
	Name        *string  `json:"name"        validate:"omitempty,notblank"`
	Description *string  `json:"description" validate:"omitempty,notblank"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Category    *string  `json:"category"    validate:"omitempty,notblank"`
	InStock     *bool    `json:"inStock"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPage is the result of a listing query: one page of products plus
// the pagination metadata and the echoed filter values.
type ProductPage struct {
	Items      []ProductDto     `json:"data"`
	Pagination query.Pagination `json:"pagination"`
	Filters    query.Filters    `json:"filters"`
}

// PriceStatsDto holds price aggregates. The values are null when the
// collection is empty.
type PriceStatsDto struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
	Avg *float64 `json:"avg"`
}

// StatsDto represents aggregate statistics over the full collection.
type StatsDto struct {
	TotalProducts int            `json:"totalProducts"`
	InStock       int            `json:"inStock"`
	OutOfStock    int            `json:"outOfStock"`
	Categories    map[string]int `json:"categories"`
	PriceStats    PriceStatsDto  `json:"priceStats"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id string) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	return toDto(product), nil
}

// List applies the query pipeline to a snapshot of the collection.
func (s *Service) List(ctx context.Context, params query.Params) (*ProductPage, error) {
	snapshot, err := s.repository.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	items, pagination := query.Apply(snapshot, params)
	productDTOs := make([]ProductDto, len(items))
	for i, item := range items {
		productDTOs[i] = *toDto(&item)
	}

	return &ProductPage{
		Items:      productDTOs,
		Pagination: pagination,
		Filters:    params.Filters(),
	}, nil
}

// Search returns products whose name, description or category contains the
// query text, case-insensitively. Note the category field is included here,
// unlike the listing endpoint's search stage.
func (s *Service) Search(ctx context.Context, q string) ([]ProductDto, error) {
	term := strings.ToLower(strings.TrimSpace(q))
	if term == "" {
		return nil, perrors.ErrEmptySearchQuery
	}

	snapshot, err := s.repository.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	results := make([]ProductDto, 0)
	for _, p := range snapshot {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			results = append(results, *toDto(&p))
		}
	}
	return results, nil
}

// Stats computes aggregate statistics over the full, unfiltered collection.
// Price aggregates are null for an empty collection.
func (s *Service) Stats(ctx context.Context) (*StatsDto, error) {
	snapshot, err := s.repository.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	stats := &StatsDto{
		TotalProducts: len(snapshot),
		Categories:    make(map[string]int),
	}
	if len(snapshot) == 0 {
		return stats, nil
	}

	minPrice := snapshot[0].Price
	maxPrice := snapshot[0].Price
	sum := 0.0
	for _, p := range snapshot {
		if p.InStock {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
		stats.Categories[p.Category]++
		minPrice = min(minPrice, p.Price)
		maxPrice = max(maxPrice, p.Price)
		sum += p.Price
	}
	avg := sum / float64(len(snapshot))
	stats.PriceStats = PriceStatsDto{Min: &minPrice, Max: &maxPrice, Avg: &avg}

	return stats, nil
}

// Create creates a new product and returns it as a ProductDto.
// The service assigns a fresh unique ID and both timestamps.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	now := time.Now().UTC()
	p := store.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(product.Name),
		Description: strings.TrimSpace(product.Description),
		Price:       *product.Price,
		Category:    strings.TrimSpace(product.Category),
		InStock:     *product.InStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repository.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(&p), nil
}

// Update merges only the provided fields onto the existing record, refreshes
// updatedAt and leaves ID and createdAt untouched.
func (s *Service) Update(ctx context.Context, id string, product ProductUpdateDto) (*ProductDto, error) {
	existing, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	merged := *existing
	if product.Name != nil {
		merged.Name = strings.TrimSpace(*product.Name)
	}
	if product.Description != nil {
		merged.Description = strings.TrimSpace(*product.Description)
	}
	if product.Price != nil {
		merged.Price = *product.Price
	}
	if product.Category != nil {
		merged.Category = strings.TrimSpace(*product.Category)
	}
	if product.InStock != nil {
		merged.InStock = *product.InStock
	}
	merged.UpdatedAt = time.Now().UTC()

	if err := s.repository.Replace(ctx, id, merged); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	return toDto(&merged), nil
}

// DeleteByID deletes a product by its ID and returns the removed record.
func (s *Service) DeleteByID(ctx context.Context, id string) (*ProductDto, error) {
	removed, err := s.repository.Remove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}

	return toDto(removed), nil
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
