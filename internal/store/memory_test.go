package store

import (
	"context"
	"testing"
	"time"

	perrors "github.com/shopkit/products-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id, name string) Product {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Product{
		ID:          id,
		Name:        name,
		Description: "description of " + name,
		Price:       9.99,
		Category:    "Test",
		InStock:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func Test_MemoryStore_FindByID(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Insert(ctx, testProduct("1", "Laptop")))

	// when / then
	found, err := s.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", found.Name)

	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_MemoryStore_SnapshotPreservesInsertionOrder(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"3", "1", "2"} {
		require.NoError(t, s.Insert(ctx, testProduct(id, "P"+id)))
	}

	// when
	snapshot, err := s.Snapshot(ctx)

	// then
	require.NoError(t, err)
	require.Len(t, snapshot, 3)
	assert.Equal(t, "3", snapshot[0].ID)
	assert.Equal(t, "1", snapshot[1].ID)
	assert.Equal(t, "2", snapshot[2].ID)
}

func Test_MemoryStore_SnapshotIsACopy(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Insert(ctx, testProduct("1", "Laptop")))

	// when: mutating the snapshot must not affect the store
	snapshot, err := s.Snapshot(ctx)
	require.NoError(t, err)
	snapshot[0].Name = "Changed"

	// then
	found, err := s.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", found.Name)
}

func Test_MemoryStore_Replace(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Insert(ctx, testProduct("1", "Laptop")))
	require.NoError(t, s.Insert(ctx, testProduct("2", "Mug")))

	// when: replacing preserves the position
	updated := testProduct("1", "Laptop Pro")
	require.NoError(t, s.Replace(ctx, "1", updated))

	// then
	snapshot, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", snapshot[0].Name)
	assert.Equal(t, "2", snapshot[1].ID)

	// and: replacing a missing id fails
	err = s.Replace(ctx, "missing", updated)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func Test_MemoryStore_Remove(t *testing.T) {
	// given
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Insert(ctx, testProduct("1", "Laptop")))
	require.NoError(t, s.Insert(ctx, testProduct("2", "Mug")))

	// when
	removed, err := s.Remove(ctx, "1")

	// then: the removed snapshot comes back and the record is gone
	require.NoError(t, err)
	assert.Equal(t, "Laptop", removed.Name)
	_, err = s.FindByID(ctx, "1")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	// and: removing the same id twice fails on the second call
	_, err = s.Remove(ctx, "1")
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	snapshot, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "2", snapshot[0].ID)
}
