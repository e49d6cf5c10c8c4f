package location

import (
	"sync"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// DistanceGate lets a position through only when it moved more than
// Threshold metres away from the last position it let through.
type DistanceGate struct {
	thresholdMeters float64

	mu       sync.Mutex
	baseline *spatial.Point
}

// NewDistanceGate builds a gate with the given threshold in metres.
func NewDistanceGate(thresholdMeters float64) *DistanceGate {
	return &DistanceGate{thresholdMeters: thresholdMeters}
}

// Observe reports whether p should trigger the guarded action. The first
// observation always passes and sets the baseline.
func (g *DistanceGate) Observe(p spatial.Point) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.baseline == nil {
		g.baseline = &p
		return true
	}
	if spatial.HaversineMeters(*g.baseline, p) > g.thresholdMeters {
		g.baseline = &p
		return true
	}
	return false
}

// Baseline returns the last accepted position.
func (g *DistanceGate) Baseline() (spatial.Point, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.baseline == nil {
		return spatial.Point{}, false
	}
	return *g.baseline, true
}

// Reset forgets the baseline so the next observation fires again.
func (g *DistanceGate) Reset() {
	g.mu.Lock()
	g.baseline = nil
	g.mu.Unlock()
}
