package citydata

import (
	"time"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

// POI is a named hotspot the city publishes real-time data for.
type POI struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Point returns the hotspot coordinate.
func (p POI) Point() spatial.Point {
	return spatial.Point{Lat: p.Lat, Lng: p.Lng}
}

// Weather is the latest observation for an area.
type Weather struct {
	Temperature          *float64 `json:"temperature,omitempty"`
	SensibleTemperature  *float64 `json:"sensibleTemperature,omitempty"`
	MaxTemperature       *float64 `json:"maxTemperature,omitempty"`
	MinTemperature       *float64 `json:"minTemperature,omitempty"`
	Humidity             *float64 `json:"humidity,omitempty"`
	Precipitation        string   `json:"precipitation,omitempty"`
	PrecipitationMessage string   `json:"precipitationMessage,omitempty"`
	PM10                 *float64 `json:"pm10,omitempty"`
	PM25                 *float64 `json:"pm25,omitempty"`
	UVIndex              string   `json:"uvIndex,omitempty"`
	ObservedAt           string   `json:"observedAt,omitempty"`
}

// Congestion is the live population estimate for an area.
type Congestion struct {
	Level         string `json:"level"`
	Message       string `json:"message,omitempty"`
	PopulationMin *int   `json:"populationMin,omitempty"`
	PopulationMax *int   `json:"populationMax,omitempty"`
	ObservedAt    string `json:"observedAt,omitempty"`
}

// Area is what the upstream returns for one hotspot. Either block may be
// missing.
type Area struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Weather    *Weather    `json:"weather,omitempty"`
	Congestion *Congestion `json:"congestion,omitempty"`
	FetchedAt  time.Time   `json:"fetchedAt"`
}

// Degraded names a subsystem that produced no data.
type Degraded struct {
	Subsystem string `json:"subsystem"`
	Reason    string `json:"reason"`
}

// Status answers "what is it like near here".
type Status struct {
	POI        POI         `json:"poi"`
	DistanceKm float64     `json:"distance"`
	Weather    *Weather    `json:"weather,omitempty"`
	Congestion *Congestion `json:"congestion,omitempty"`
	FetchedAt  time.Time   `json:"fetchedAt"`
	Cached     bool        `json:"cached"`
	Degraded   []Degraded  `json:"degraded"`
}

// Config tunes the citydata service.
type Config struct {
	CacheTTL     time.Duration
	FetchTimeout time.Duration
}

const (
	SubsystemWeather    = "weather"
	SubsystemCongestion = "congestion"
)
