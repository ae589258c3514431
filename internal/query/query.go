// Package query implements the filter/sort/paginate pipeline applied to
// a snapshot of the product collection. The pipeline is pure: it never
// mutates its input.
package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/shopkit/products-api/internal/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params carries the raw request parameters of a listing query.
// An empty string means the parameter was not supplied. Numeric and boolean
// values are parsed by the pipeline itself so that parse-failure policies
// live in one place.
type Params struct {
	Search   string
	Category string
	InStock  string
	MinPrice string
	MaxPrice string
	Sort     string
	Order    string
	Page     string
	Limit    string
}

// Pagination describes the position of the returned page within the
// filtered (pre-pagination) result set.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// Filters echoes the effective filter values of a query, null when not supplied.
type Filters struct {
	Search   *string `json:"search"`
	Category *string `json:"category"`
	InStock  *string `json:"inStock"`
	MinPrice *string `json:"minPrice"`
	MaxPrice *string `json:"maxPrice"`
}

// Filters returns the echo of the filter values used by this query.
func (p Params) Filters() Filters {
	return Filters{
		Search:   optional(p.Search),
		Category: optional(p.Category),
		InStock:  optional(p.InStock),
		MinPrice: optional(p.MinPrice),
		MaxPrice: optional(p.MaxPrice),
	}
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

// Apply runs the pipeline stages in fixed order: search, category filter,
// stock filter, price range, sort, pagination. It returns the requested
// page and the pagination metadata computed over the filtered set.
func Apply(products []store.Product, params Params) ([]store.Product, Pagination) {
	filtered := filter(products, params)
	sorted := sortProducts(filtered, params.Sort, params.Order)

	page := positiveIntOrDefault(params.Page, DefaultPage)
	limit := positiveIntOrDefault(params.Limit, DefaultLimit)

	total := len(sorted)
	start := (page - 1) * limit
	end := start + limit

	meta := Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   (total + limit - 1) / limit,
		HasNext: end < total,
		HasPrev: page > 1,
	}

	// An out-of-range page yields an empty page, not an error.
	if start >= total {
		return []store.Product{}, meta
	}
	if end > total {
		end = total
	}
	return sorted[start:end], meta
}

// filter applies the search, category, stock and price-range stages.
func filter(products []store.Product, params Params) []store.Product {
	result := make([]store.Product, 0, len(products))
	result = append(result, products...)

	if params.Search != "" {
		term := strings.ToLower(params.Search)
		result = keep(result, func(p store.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term)
		})
	}

	if params.Category != "" {
		result = keep(result, func(p store.Product) bool {
			return strings.EqualFold(p.Category, params.Category)
		})
	}

	if params.InStock != "" {
		inStock := params.InStock == "true"
		result = keep(result, func(p store.Product) bool {
			return p.InStock == inStock
		})
	}

	// A price bound that does not parse as a number is treated as absent.
	if minPrice, ok := parseFloat(params.MinPrice); ok {
		result = keep(result, func(p store.Product) bool {
			return p.Price >= minPrice
		})
	}
	if maxPrice, ok := parseFloat(params.MaxPrice); ok {
		result = keep(result, func(p store.Product) bool {
			return p.Price <= maxPrice
		})
	}

	return result
}

func keep(products []store.Product, pred func(store.Product) bool) []store.Product {
	kept := products[:0]
	for _, p := range products {
		if pred(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// comparators is the closed set of sortable fields. Each field maps to a
// typed comparator using the field's native ordering.
var comparators = map[string]func(a, b store.Product) int{
	"name":        func(a, b store.Product) int { return cmp.Compare(a.Name, b.Name) },
	"description": func(a, b store.Product) int { return cmp.Compare(a.Description, b.Description) },
	"price":       func(a, b store.Product) int { return cmp.Compare(a.Price, b.Price) },
	"category":    func(a, b store.Product) int { return cmp.Compare(a.Category, b.Category) },
	"inStock":     func(a, b store.Product) int { return compareBool(a.InStock, b.InStock) },
	"createdAt":   func(a, b store.Product) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt":   func(a, b store.Product) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// sortProducts stable-sorts by the given field. An unknown or empty field
// name leaves the prior order unchanged.
func sortProducts(products []store.Product, field, order string) []store.Product {
	compare, ok := comparators[field]
	if !ok {
		return products
	}
	desc := order == "desc"
	slices.SortStableFunc(products, func(a, b store.Product) int {
		c := compare(a, b)
		if desc {
			return -c
		}
		return c
	})
	return products
}

// positiveIntOrDefault parses a pagination parameter, falling back to the
// default when the value is missing, malformed or not positive.
func positiveIntOrDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
