package updater

import (
	"fmt"
	"testing"

	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSeries_Append(t *testing.T) {
	s := NewSeries(3)
	for i := 0; i < 10; i++ {
		s.Append(models.PricePoint{Time: int64(i), PriceUsd: fmt.Sprint(i)})
		assert.LessOrEqual(t, s.Len(), 3)
	}

	points := s.Points()
	assert.Equal(t, []int64{7, 8, 9}, []int64{points[0].Time, points[1].Time, points[2].Time})

	// arrival order is kept even when timestamps go backwards
	s.Append(models.PricePoint{Time: 1})
	points = s.Points()
	assert.Equal(t, []int64{8, 9, 1}, []int64{points[0].Time, points[1].Time, points[2].Time})
}

func TestSeries_PointsIsACopy(t *testing.T) {
	s := NewSeries(5)
	s.Append(models.PricePoint{Time: 1, PriceUsd: "1"})

	points := s.Points()
	points[0].PriceUsd = "changed"
	assert.Equal(t, "1", s.Points()[0].PriceUsd)
}

func TestSeries_DefaultMax(t *testing.T) {
	assert.Equal(t, DefaultMaxRetained, NewSeries(0).Max())
}

func TestDisplayRange(t *testing.T) {
	pts := func(prices ...string) []models.PricePoint {
		out := make([]models.PricePoint, 0, len(prices))
		for _, p := range prices {
			out = append(out, models.PricePoint{PriceUsd: p})
		}
		return out
	}

	tests := map[string]struct {
		points   []models.PricePoint
		expected Range
	}{
		"empty":       {points: nil, expected: Range{Min: 0, Max: 0}},
		"unparseable": {points: pts("", "abc"), expected: Range{Min: 0, Max: 0}},
		"padded":      {points: pts("150", "100", "200"), expected: Range{Min: 90, Max: 210}},
		"clamped":     {points: pts("1", "100"), expected: Range{Min: 0, Max: 109.9}},
		"single":      {points: pts("42.5"), expected: Range{Min: 42.5, Max: 42.5}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := DisplayRange(tt.points)
			assert.InDelta(t, tt.expected.Min, r.Min, 1e-9)
			assert.InDelta(t, tt.expected.Max, r.Max, 1e-9)
			assert.GreaterOrEqual(t, r.Min, 0.0)
		})
	}
}

func TestState_String(t *testing.T) {
	b, err := StateLive.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "live", string(b))
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
