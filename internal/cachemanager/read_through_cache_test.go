package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type squareInput struct {
	N int
}

func newSquareCache(skip bool) (*ReadThroughCache[string, int, squareInput], *InMemoryCacheManager[string, int], *int) {
	calls := new(int)
	store := NewInMemoryCacheManager[string, int]("square", DefaultExpiration, DefaultCleanupInterval)
	rt := NewReadThroughCache[string, int, squareInput](
		store,
		func(_ context.Context, in squareInput) (int, error) {
			*calls++
			if in.N < 0 {
				return 0, errors.New("negative")
			}
			return in.N * in.N, nil
		},
		skip,
	)
	return rt, store, calls
}

func TestReadThroughCache_Get_MissThenHit(t *testing.T) {
	rt, store, calls := newSquareCache(false)

	v, hit, err := rt.Get(context.Background(), "sq:3", squareInput{N: 3}, time.Minute)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, 9, v)

	v, hit, err = rt.Get(context.Background(), "sq:3", squareInput{N: 3}, time.Minute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 9, v)

	require.Equal(t, 1, *calls)
	require.Equal(t, 1, store.Len())
}

func TestReadThroughCache_Get_ErrorNotCached(t *testing.T) {
	rt, store, calls := newSquareCache(false)

	for range 2 {
		_, hit, err := rt.Get(context.Background(), "sq:-1", squareInput{N: -1}, time.Minute)
		require.Error(t, err)
		require.False(t, hit)
	}

	require.Equal(t, 2, *calls)
	require.Zero(t, store.Len())
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	rt, store, calls := newSquareCache(true)

	for range 3 {
		v, hit, err := rt.Get(context.Background(), "sq:2", squareInput{N: 2}, time.Minute)
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, 4, v)
	}

	require.Equal(t, 3, *calls)
	require.Zero(t, store.Len())
}

func TestReadThroughCache_GetWithRefresh(t *testing.T) {
	rt, _, calls := newSquareCache(false)

	_, hit, err := rt.GetWithRefresh(context.Background(), "sq:4", squareInput{N: 4}, time.Minute)
	require.NoError(t, err)
	require.False(t, hit)

	v, hit, err := rt.GetWithRefresh(context.Background(), "sq:4", squareInput{N: 4}, time.Minute)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 16, v)
	require.Equal(t, 1, *calls)
}
