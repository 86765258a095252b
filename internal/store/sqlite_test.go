package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRecord(status RouteStatus) RouteRecord {
	return RouteRecord{
		OriginLon:   77.200,
		OriginLat:   28.540,
		DestLon:     77.220,
		DestLat:     28.541,
		Status:      status,
		CacheHit:    true,
		SafestLen:   2415.7,
		SafestScore: 0.74,
		FastestLen:  1980.2,
	}
}

func TestSQLiteStore_CreateAndGetRoute(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateRoute(ctx, sampleRecord(RouteStatusOK))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetRoute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, RouteStatusOK, got.Status)
	assert.Equal(t, 77.200, got.OriginLon)
	assert.Equal(t, 28.541, got.DestLat)
	assert.True(t, got.CacheHit)
	assert.InDelta(t, 2415.7, got.SafestLen, 1e-9)
	assert.InDelta(t, 0.74, got.SafestScore, 1e-9)
	assert.InDelta(t, 1980.2, got.FastestLen, 1e-9)
	assert.Empty(t, got.Insight)
}

func TestSQLiteStore_InsightRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord(RouteStatusOK)
	rec.Insight = "The safest route stays on well-lit primary roads."
	created, err := s.CreateRoute(ctx, rec)
	require.NoError(t, err)

	got, err := s.GetRoute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Insight, got.Insight)
}

func TestSQLiteStore_GetRoute_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRoute(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRoutes_FilterAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateRoute(ctx, sampleRecord(RouteStatusOK))
	require.NoError(t, err)
	_, err = s.CreateRoute(ctx, sampleRecord(RouteStatusNoPath))
	require.NoError(t, err)
	last, err := s.CreateRoute(ctx, sampleRecord(RouteStatusOK))
	require.NoError(t, err)

	all, err := s.ListRoutes(ctx, RouteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ok, err := s.ListRoutes(ctx, RouteFilter{Status: RouteStatusOK})
	require.NoError(t, err)
	assert.Len(t, ok, 2)
	for _, r := range ok {
		assert.Equal(t, RouteStatusOK, r.Status)
	}

	// Newest first.
	assert.Equal(t, last.ID, all[0].ID)
}

func TestSQLiteStore_ListRoutes_LimitOffset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateRoute(ctx, sampleRecord(RouteStatusOK))
		require.NoError(t, err)
	}

	page, err := s.ListRoutes(ctx, RouteFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := s.ListRoutes(ctx, RouteFilter{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}
