package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mehrbod2002/coinboard/internal/cache"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	assets  map[string]models.Asset
	ticks   []models.HistoryTick
	err     error
	calls   map[string]int
	start   int64
	end     int64
	limit   int
	listErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		assets: map[string]models.Asset{
			"bitcoin":  {ID: "bitcoin", Rank: "1", PriceUsd: "64000"},
			"ethereum": {ID: "ethereum", Rank: "2", PriceUsd: "3100"},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeSource) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	f.calls["asset"]++
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.assets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &a, nil
}

func (f *fakeSource) GetHistory(ctx context.Context, id string, start, end int64) ([]models.HistoryTick, error) {
	f.calls["history"]++
	f.start, f.end = start, end
	if _, ok := f.assets[id]; !ok {
		return nil, models.ErrNotFound
	}
	return f.ticks, f.err
}

func (f *fakeSource) ListAssets(ctx context.Context, limit int) ([]models.Asset, error) {
	f.calls["assets"]++
	f.limit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.Asset{f.assets["ethereum"], f.assets["bitcoin"]}, nil
}

func newTestService(t *testing.T, src *fakeSource) (AssetService, *metrics.Prometheus) {
	t.Helper()
	mem := cache.NewMemoryCache(0)
	t.Cleanup(func() { mem.Close() })

	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	cfg := DefaultAssetServiceConfig()
	cfg.Now = func() time.Time { return now }
	m := metrics.NewPrometheusMetrics()
	return NewAssetService(src, mem, cfg, m), m
}

func TestAssetService_GetAssetCaches(t *testing.T) {
	src := newFakeSource()
	svc, m := newTestService(t, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		asset, err := svc.GetAsset(ctx, "bitcoin")
		require.NoError(t, err)
		assert.Equal(t, models.Numeric("64000"), asset.PriceUsd)
	}

	assert.Equal(t, 1, src.calls["asset"])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("asset", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("asset", "miss")))
}

func TestAssetService_ErrorsAreNotCached(t *testing.T) {
	src := newFakeSource()
	svc, _ := newTestService(t, src)
	ctx := context.Background()

	_, err := svc.GetAsset(ctx, "dogecoin")
	assert.True(t, models.IsNotFound(err))
	_, err = svc.GetAsset(ctx, "dogecoin")
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, 2, src.calls["asset"])

	src.err = &models.UpstreamError{Status: 502, Err: errors.New("bad gateway")}
	_, err = svc.GetAsset(ctx, "ethereum")
	var upstream *models.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestAssetService_GetHistory(t *testing.T) {
	src := newFakeSource()
	ts := time.Date(2024, 3, 9, 11, 1, 0, 0, time.UTC).UnixMilli()
	src.ticks = []models.HistoryTick{{PriceUsd: "63000.5", Time: ts}}
	svc, _ := newTestService(t, src)

	points, err := svc.GetHistory(context.Background(), "bitcoin")
	require.NoError(t, err)

	require.Len(t, points, 1)
	assert.Equal(t, models.PricePoint{Time: ts, PriceUsd: "63000.5", Date: "11:01 AM"}, points[0])
	assert.Equal(t, time.Hour.Milliseconds(), src.end-src.start)

	_, err = svc.GetHistory(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls["history"])
}

func TestAssetService_ListAssetsSorted(t *testing.T) {
	src := newFakeSource()
	svc, _ := newTestService(t, src)

	assets, err := svc.ListAssets(context.Background(), 20, DefaultSortConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, ids(assets))
	assert.Equal(t, 20, src.limit)

	assets, err = svc.ListAssets(context.Background(), 20, SortConfig{SortByPrice, SortAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"ethereum", "bitcoin"}, ids(assets))
	assert.Equal(t, 1, src.calls["assets"])
}

func TestAssetService_NoCache(t *testing.T) {
	src := newFakeSource()
	svc := NewAssetService(src, nil, DefaultAssetServiceConfig(), nil)

	_, err := svc.GetAsset(context.Background(), "bitcoin")
	require.NoError(t, err)
	_, err = svc.GetAsset(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls["asset"])
}
