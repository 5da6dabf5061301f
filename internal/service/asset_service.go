package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mehrbod2002/coinboard/internal/cache"
	"github.com/mehrbod2002/coinboard/internal/history"
	"github.com/mehrbod2002/coinboard/internal/metrics"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/rs/zerolog/log"
)

// MarketSource is the upstream the service reads from.
type MarketSource interface {
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	GetHistory(ctx context.Context, id string, start, end int64) ([]models.HistoryTick, error)
	ListAssets(ctx context.Context, limit int) ([]models.Asset, error)
}

type AssetService interface {
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	GetHistory(ctx context.Context, id string) ([]models.PricePoint, error)
	ListAssets(ctx context.Context, limit int, sort SortConfig) ([]models.Asset, error)
}

type AssetServiceConfig struct {
	AssetTTL   time.Duration
	HistoryTTL time.Duration
	ListTTL    time.Duration
	Labeler    history.Labeler
	Now        func() time.Time
}

func DefaultAssetServiceConfig() AssetServiceConfig {
	return AssetServiceConfig{
		AssetTTL:   30 * time.Second,
		HistoryTTL: 60 * time.Second,
		ListTTL:    30 * time.Second,
		Labeler:    history.NewLabeler(time.UTC),
		Now:        time.Now,
	}
}

type assetService struct {
	source  MarketSource
	cache   cache.Cache
	cfg     AssetServiceConfig
	metrics *metrics.Prometheus
}

func NewAssetService(source MarketSource, c cache.Cache, cfg AssetServiceConfig, m *metrics.Prometheus) AssetService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &assetService{
		source:  source,
		cache:   c,
		cfg:     cfg,
		metrics: m,
	}
}

func (s *assetService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	return cached(ctx, s, "asset", "asset:"+id, s.cfg.AssetTTL, func() (*models.Asset, error) {
		return s.source.GetAsset(ctx, id)
	})
}

func (s *assetService) GetHistory(ctx context.Context, id string) ([]models.PricePoint, error) {
	return cached(ctx, s, "history", "history:"+id, s.cfg.HistoryTTL, func() ([]models.PricePoint, error) {
		start, end := history.Window(s.cfg.Now())
		ticks, err := s.source.GetHistory(ctx, id, start, end)
		if err != nil {
			return nil, err
		}
		return history.Normalize(ticks, s.cfg.Labeler), nil
	})
}

func (s *assetService) ListAssets(ctx context.Context, limit int, sort SortConfig) ([]models.Asset, error) {
	assets, err := cached(ctx, s, "assets", fmt.Sprintf("assets:%d", limit), s.cfg.ListTTL, func() ([]models.Asset, error) {
		return s.source.ListAssets(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return SortAssets(assets, sort), nil
}

// cached serves key from the cache when present, otherwise loads it and
// stores successful results for ttl. Cache failures never fail the request.
func cached[T any](ctx context.Context, s *assetService, kind, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		b, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		}
		if ok {
			var v T
			if err := json.Unmarshal(b, &v); err == nil {
				s.metrics.Cache(kind, true)
				return v, nil
			}
			log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		}
		s.metrics.Cache(kind, false)
	}

	v, err := load()
	if err != nil {
		return zero, err
	}

	if s.cache != nil {
		b, err := json.Marshal(v)
		if err == nil {
			err = s.cache.Set(ctx, key, b, ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache store failed")
		}
	}
	return v, nil
}
