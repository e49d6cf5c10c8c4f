package location

import (
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// Type says where a position came from.
type Type string

const (
	TypeCurrent  Type = "current"
	TypeSearched Type = "searched"
)

// Update is a position report from GPS watch, map drag or an explicit move.
type Update struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type Type    `json:"type"`
}

// Point returns the update's coordinate.
func (u Update) Point() spatial.Point {
	return spatial.Point{Lat: u.Lat, Lng: u.Lng}
}

// State is the tracker's view of one owner.
type State struct {
	Owner         string             `json:"owner"`
	Position      *spatial.Point     `json:"position,omitempty"`
	Type          Type               `json:"type,omitempty"`
	UpdatedAt     time.Time          `json:"updatedAt"`
	LastTriggered *spatial.Point     `json:"lastTriggered,omitempty"`
	LastLoaded    *spatial.Point     `json:"lastLoaded,omitempty"`
	Epoch         uint64             `json:"epoch"`
	Pending       bool               `json:"pending"`
	Snapshot      *facility.Snapshot `json:"snapshot,omitempty"`
}

// Config tunes the tracker.
type Config struct {
	DebounceWait            time.Duration
	TriggerThresholdMeters  float64
	RefetchThresholdMeters  float64
	RefetchRadiusKm         float64
	RefreshTimeout          time.Duration
	TriggerOnSearchedPlaces bool
	IdleTTL                 time.Duration
}
