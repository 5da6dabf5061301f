package updater

import (
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/shopspring/decimal"
)

var padding = decimal.NewFromFloat(0.1)

// Range is the vertical scale of the chart.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DisplayRange pads the price extent by 10% of its span on both sides and
// never goes below zero. Without any usable price the range is [0, 0].
func DisplayRange(points []models.PricePoint) Range {
	var lo, hi decimal.Decimal
	found := false
	for _, p := range points {
		d, err := decimal.NewFromString(p.PriceUsd)
		if err != nil {
			continue
		}
		if !found {
			lo, hi, found = d, d, true
			continue
		}
		lo = decimal.Min(lo, d)
		hi = decimal.Max(hi, d)
	}
	if !found {
		return Range{}
	}

	pad := hi.Sub(lo).Mul(padding)
	lo = lo.Sub(pad)
	if lo.IsNegative() {
		lo = decimal.Zero
	}
	return Range{
		Min: lo.InexactFloat64(),
		Max: hi.Add(pad).InexactFloat64(),
	}
}
