package service

import (
	"fmt"
	"sort"

	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/shopspring/decimal"
)

type SortBy string

const (
	SortByRank   SortBy = "rank"
	SortByPrice  SortBy = "price"
	SortByChange SortBy = "change"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortConfig describes how the asset list is ordered. It is passed down to
// whoever renders the list instead of living in shared state.
type SortConfig struct {
	SortBy    SortBy    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

func DefaultSortConfig() SortConfig {
	return SortConfig{SortBy: SortByRank, SortOrder: SortAsc}
}

// ParseSortConfig validates query values; empty values keep the defaults.
func ParseSortConfig(sortBy, sortOrder string) (SortConfig, error) {
	cfg := DefaultSortConfig()
	switch SortBy(sortBy) {
	case "":
	case SortByRank, SortByPrice, SortByChange:
		cfg.SortBy = SortBy(sortBy)
	default:
		return cfg, fmt.Errorf("invalid sortBy %q", sortBy)
	}
	switch SortOrder(sortOrder) {
	case "":
	case SortAsc, SortDesc:
		cfg.SortOrder = SortOrder(sortOrder)
	default:
		return cfg, fmt.Errorf("invalid sortOrder %q", sortOrder)
	}
	return cfg, nil
}

func (c SortConfig) WithSortBy(by SortBy) SortConfig {
	c.SortBy = by
	return c
}

// ToggleOrder flips between ascending and descending.
func (c SortConfig) ToggleOrder() SortConfig {
	if c.SortOrder == SortDesc {
		c.SortOrder = SortAsc
	} else {
		c.SortOrder = SortDesc
	}
	return c
}

// SortAssets returns a sorted copy of assets. Values that do not parse as
// numbers compare as zero.
func SortAssets(assets []models.Asset, cfg SortConfig) []models.Asset {
	sorted := make([]models.Asset, len(assets))
	copy(sorted, assets)

	key := func(a models.Asset) decimal.Decimal {
		switch cfg.SortBy {
		case SortByPrice:
			return toDecimal(a.PriceUsd)
		case SortByChange:
			return toDecimal(a.ChangePercent24Hr)
		default:
			return toDecimal(a.Rank)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := key(sorted[i]).Cmp(key(sorted[j]))
		if cfg.SortOrder == SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})
	return sorted
}

func toDecimal(n models.Numeric) decimal.Decimal {
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}
