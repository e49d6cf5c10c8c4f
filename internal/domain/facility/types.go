package facility

import (
	"strings"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// CongestionLevel mirrors the city congestion buckets.
type CongestionLevel string

const (
	CongestionUnknown CongestionLevel = ""
	CongestionRelaxed CongestionLevel = "relaxed"
	CongestionNormal  CongestionLevel = "normal"
	CongestionBusy    CongestionLevel = "slightly_busy"
	CongestionCrowded CongestionLevel = "crowded"
)

// ParseCongestion maps the city's Korean labels (and the English codes)
// onto CongestionLevel.
func ParseCongestion(raw string) CongestionLevel {
	switch strings.ReplaceAll(strings.TrimSpace(raw), " ", "") {
	case "여유", string(CongestionRelaxed):
		return CongestionRelaxed
	case "보통", string(CongestionNormal):
		return CongestionNormal
	case "약간붐빔", string(CongestionBusy):
		return CongestionBusy
	case "붐빔", string(CongestionCrowded):
		return CongestionCrowded
	default:
		return CongestionUnknown
	}
}

// Facility is a render-time place built from upstream feeds.
type Facility struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        search.Category `json:"category"`
	Position        spatial.Point   `json:"position"`
	Address         string          `json:"address"`
	Phone           string          `json:"phone,omitempty"`
	Website         string          `json:"website,omitempty"`
	OperatingHours  string          `json:"operatingHours,omitempty"`
	Description     string          `json:"description,omitempty"`
	DistanceKm      *float64        `json:"distance,omitempty"`
	IsReservable    *bool           `json:"isReservable,omitempty"`
	CongestionLevel CongestionLevel `json:"congestionLevel,omitempty"`
}

// NearbyQuery selects facilities around a point.
type NearbyQuery struct {
	Center     spatial.Point     `json:"center"`
	RadiusKm   float64           `json:"radiusKm"`
	Categories []search.Category `json:"categories,omitempty"`
}

// Degraded records a category whose upstream fetch failed.
type Degraded struct {
	Category search.Category `json:"category"`
	Reason   string          `json:"reason"`
}

// Snapshot is the outcome of a nearby fetch.
type Snapshot struct {
	Center   spatial.Point `json:"center"`
	RadiusKm float64       `json:"radiusKm"`
	Total    int           `json:"total"`
	Clusters []Cluster     `json:"clusters"`
	Singles  []Facility    `json:"singleFacilities"`
	Degraded []Degraded    `json:"degraded"`
	Epoch    uint64        `json:"epoch,omitempty"`
}

// Config tunes nearby fetches.
type Config struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	FetchTimeout    time.Duration
	MaxConcurrency  int
}
