package trigger

import (
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// JobName identifies location trigger jobs on the queue.
const JobName = "location.trigger"

// Job asks the worker to evaluate triggers around a position.
type Job struct {
	Owner    string
	Position spatial.Point
	At       time.Time
}

// Notification is a message in an owner's inbox.
type Notification struct {
	ID         string          `json:"id"`
	Owner      string          `json:"-"`
	Title      string          `json:"title"`
	Body       string          `json:"body"`
	FacilityID string          `json:"facilityId,omitempty"`
	Category   search.Category `json:"category,omitempty"`
	Position   *spatial.Point  `json:"position,omitempty"`
	DistanceKm float64         `json:"distance,omitempty"`
	Read       bool            `json:"read"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Config tunes trigger evaluation.
type Config struct {
	RadiusKm         float64
	Cooldown         time.Duration
	MaxPerEvaluation int
	Categories       []search.Category
}
