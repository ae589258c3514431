package service

import (
	"context"
	"errors"
	"testing"

	perrors "github.com/shopkit/products-api/internal/errors"
	"github.com/shopkit/products-api/internal/query"
	"github.com/shopkit/products-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore is a mock implementation of the ProductStore interface
// that fails every operation with the configured error.
type failingStore struct {
	error error
}

func (m *failingStore) FindByID(_ context.Context, _ string) (*store.Product, error) {
	return nil, m.error
}

func (m *failingStore) Snapshot(_ context.Context) ([]store.Product, error) {
	return nil, m.error
}

func (m *failingStore) Insert(_ context.Context, _ store.Product) error {
	return m.error
}

func (m *failingStore) Replace(_ context.Context, _ string, _ store.Product) error {
	return m.error
}

func (m *failingStore) Remove(_ context.Context, _ string) (*store.Product, error) {
	return nil, m.error
}

func ptr[T any](v T) *T {
	return &v
}

func seededService(t *testing.T) (*Service, store.ProductStore) {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	samples := []store.Product{
		{ID: "1", Name: "Laptop", Description: "High-performance laptop for developers", Price: 1299.99, Category: "Electronics", InStock: true},
		{ID: "2", Name: "Coffee Mug", Description: "Ceramic coffee mug with handle", Price: 12.99, Category: "Kitchen", InStock: true},
		{ID: "3", Name: "Desk Lamp", Description: "LED desk lamp with adjustable brightness", Price: 34.99, Category: "Home", InStock: false},
	}
	for _, p := range samples {
		require.NoError(t, s.Insert(ctx, p))
	}
	return NewService(s), s
}

func Test_Service_FindByID(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when / then
	found, err := service.FindByID(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Coffee Mug", found.Name)

	_, err = service.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_Service_List(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when
	page, err := service.List(context.Background(), query.Params{Category: "kitchen"})

	// then
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Coffee Mug", page.Items[0].Name)
	assert.Equal(t, 1, page.Pagination.Total)
	require.NotNil(t, page.Filters.Category)
	assert.Equal(t, "kitchen", *page.Filters.Category)
	assert.Nil(t, page.Filters.Search)
}

func Test_Service_List_StoreError(t *testing.T) {
	// given
	errStore := errors.New("store unavailable")
	service := NewService(&failingStore{error: errStore})

	// when
	_, err := service.List(context.Background(), query.Params{})

	// then
	assert.ErrorIs(t, err, errStore)
}

func Test_Service_Search(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		expectedNames []string
		expectError   error
	}{
		{
			name:        "Error - empty query",
			query:       "",
			expectError: perrors.ErrEmptySearchQuery,
		},
		{
			name:        "Error - whitespace-only query",
			query:       "   ",
			expectError: perrors.ErrEmptySearchQuery,
		},
		{
			name:          "Success - matches name case-insensitively",
			query:         "LAPTOP",
			expectedNames: []string{"Laptop"},
		},
		{
			name:          "Success - matches description",
			query:         "ceramic",
			expectedNames: []string{"Coffee Mug"},
		},
		{
			name:          "Success - matches category, unlike the list search",
			query:         "kitchen",
			expectedNames: []string{"Coffee Mug"},
		},
		{
			name:          "Success - no matches yields empty slice",
			query:         "bicycle",
			expectedNames: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service, _ := seededService(t)
			// when
			results, err := service.Search(context.Background(), tc.query)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(results))
			for i, r := range results {
				names[i] = r.Name
			}
			assert.Equal(t, tc.expectedNames, names)
		})
	}
}

func Test_Service_Stats(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when
	stats, err := service.Stats(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.InStock)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, map[string]int{"Electronics": 1, "Kitchen": 1, "Home": 1}, stats.Categories)
	require.NotNil(t, stats.PriceStats.Min)
	require.NotNil(t, stats.PriceStats.Max)
	require.NotNil(t, stats.PriceStats.Avg)
	assert.Equal(t, 12.99, *stats.PriceStats.Min)
	assert.Equal(t, 1299.99, *stats.PriceStats.Max)
	assert.InDelta(t, 449.32, *stats.PriceStats.Avg, 0.01)
}

func Test_Service_Stats_EmptyCollection(t *testing.T) {
	// given
	service := NewService(store.NewMemoryStore())

	// when
	stats, err := service.Stats(context.Background())

	// then: price aggregates are null, counts zero
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalProducts)
	assert.Equal(t, 0, stats.InStock)
	assert.Equal(t, 0, stats.OutOfStock)
	assert.Empty(t, stats.Categories)
	assert.Nil(t, stats.PriceStats.Min)
	assert.Nil(t, stats.PriceStats.Max)
	assert.Nil(t, stats.PriceStats.Avg)
}

func Test_Service_Create(t *testing.T) {
	// given
	service, _ := seededService(t)
	dto := ProductCreateDto{
		Name:        "  Keyboard  ",
		Description: " Mechanical keyboard ",
		Price:       ptr(79.99),
		Category:    " Electronics ",
		InStock:     ptr(true),
	}

	// when
	created, err := service.Create(context.Background(), dto)

	// then: id and timestamps are assigned, text fields trimmed
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Keyboard", created.Name)
	assert.Equal(t, "Mechanical keyboard", created.Description)
	assert.Equal(t, "Electronics", created.Category)
	assert.Equal(t, 79.99, created.Price)
	assert.True(t, created.InStock)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	// and: the record is retrievable under the generated id
	found, err := service.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func Test_Service_Create_AssignsUniqueIDs(t *testing.T) {
	// given
	service, _ := seededService(t)
	dto := ProductCreateDto{
		Name:        "Widget",
		Description: "A widget",
		Price:       ptr(1.0),
		Category:    "Misc",
		InStock:     ptr(false),
	}

	// when
	seen := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		created, err := service.Create(context.Background(), dto)
		require.NoError(t, err)
		// then
		_, dup := seen[created.ID]
		assert.False(t, dup, "generated ID must be unique")
		seen[created.ID] = struct{}{}
	}
}

func Test_Service_Update(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when: only the provided fields are merged
	updated, err := service.Update(context.Background(), "1", ProductUpdateDto{
		Price:   ptr(999.99),
		InStock: ptr(false),
	})

	// then
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Laptop", updated.Name)
	assert.Equal(t, 999.99, updated.Price)
	assert.False(t, updated.InStock)
}

func Test_Service_Update_EmptyBodyRefreshesOnlyUpdatedAt(t *testing.T) {
	// given
	service, _ := seededService(t)
	before, err := service.FindByID(context.Background(), "1")
	require.NoError(t, err)

	// when
	updated, err := service.Update(context.Background(), "1", ProductUpdateDto{})

	// then
	require.NoError(t, err)
	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.Name, updated.Name)
	assert.Equal(t, before.Description, updated.Description)
	assert.Equal(t, before.Price, updated.Price)
	assert.Equal(t, before.Category, updated.Category)
	assert.Equal(t, before.InStock, updated.InStock)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt), "updatedAt must be refreshed")
}

func Test_Service_Update_NotFound(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when
	_, err := service.Update(context.Background(), "missing", ProductUpdateDto{Name: ptr("X")})

	// then
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_Service_DeleteByID(t *testing.T) {
	// given
	service, _ := seededService(t)

	// when
	deleted, err := service.DeleteByID(context.Background(), "2")

	// then: the deleted snapshot is returned and the record is gone
	require.NoError(t, err)
	assert.Equal(t, "Coffee Mug", deleted.Name)
	_, err = service.FindByID(context.Background(), "2")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	// and: deleting the same id twice fails on the second call
	_, err = service.DeleteByID(context.Background(), "2")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}
