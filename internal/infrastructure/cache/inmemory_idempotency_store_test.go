package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkProcessed_FirstTimeReturnsTrue(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ok, err := store.MarkProcessed(context.Background(), "chrg_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarkProcessed_DuplicateReturnsFalse(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, err := store.MarkProcessed(ctx, "chrg_1", time.Minute)
	require.NoError(t, err)

	ok, err := store.MarkProcessed(ctx, "chrg_1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkProcessed_ExpiredKeyCanBeReprocessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	_, err := store.MarkProcessed(ctx, "chrg_1", time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	ok, err := store.MarkProcessed(ctx, "chrg_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "chrg_1")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "chrg_1", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "chrg_1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestClose_Idempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
