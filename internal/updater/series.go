package updater

import "github.com/mehrbod2002/coinboard/internal/models"

// DefaultMaxRetained covers an hour of 1-minute history plus headroom for
// live points.
const DefaultMaxRetained = 70

// Series is an arrival-ordered list of price points holding at most max
// entries. Overflow drops the oldest points.
type Series struct {
	max    int
	points []models.PricePoint
}

func NewSeries(max int) *Series {
	if max <= 0 {
		max = DefaultMaxRetained
	}
	return &Series{max: max, points: make([]models.PricePoint, 0, max)}
}

// Reset replaces the content with points, keeping the newest max of them.
func (s *Series) Reset(points []models.PricePoint) {
	if len(points) > s.max {
		points = points[len(points)-s.max:]
	}
	s.points = append(make([]models.PricePoint, 0, s.max), points...)
}

func (s *Series) Append(p models.PricePoint) {
	s.points = append(s.points, p)
	if over := len(s.points) - s.max; over > 0 {
		s.points = append(make([]models.PricePoint, 0, s.max), s.points[over:]...)
	}
}

// Points returns a copy that the caller may keep.
func (s *Series) Points() []models.PricePoint {
	out := make([]models.PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

func (s *Series) Len() int {
	return len(s.points)
}

func (s *Series) Max() int {
	return s.max
}
