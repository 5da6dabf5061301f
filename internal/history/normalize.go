package history

import (
	"time"

	"github.com/mehrbod2002/coinboard/internal/models"
)

const (
	// Lookback is the span of history shown on the chart.
	Lookback = time.Hour
	// Interval is the upstream sampling granularity for the lookback window.
	Interval = "m1"
	// DefaultLayout renders a 2-digit hour and minute, 12h clock.
	DefaultLayout = "03:04 PM"
)

// Labeler turns epoch milliseconds into a time label. The label depends only
// on the timestamp, the location and the layout.
type Labeler struct {
	Location *time.Location
	Layout   string
}

func NewLabeler(loc *time.Location) Labeler {
	if loc == nil {
		loc = time.UTC
	}
	return Labeler{Location: loc, Layout: DefaultLayout}
}

func (l Labeler) Label(ms int64) string {
	loc := l.Location
	if loc == nil {
		loc = time.UTC
	}
	layout := l.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	return time.UnixMilli(ms).In(loc).Format(layout)
}

// Window returns the [start, end] bounds in epoch milliseconds for a history
// request ending at now.
func Window(now time.Time) (start, end int64) {
	end = now.UnixMilli()
	start = now.Add(-Lookback).UnixMilli()
	return start, end
}

// Normalize attaches a display label to every tick, keeping the order.
func Normalize(ticks []models.HistoryTick, labeler Labeler) []models.PricePoint {
	points := make([]models.PricePoint, 0, len(ticks))
	for _, tick := range ticks {
		points = append(points, models.PricePoint{
			Time:     tick.Time,
			PriceUsd: tick.PriceUsd.String(),
			Date:     labeler.Label(tick.Time),
		})
	}
	return points
}
