package citydata

import (
	"context"
	"log/slog"
	"math"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

// Client fetches the live data for a hotspot.
type Client interface {
	Fetch(ctx context.Context, poi POI) (Area, error)
}

// Service resolves weather and congestion for a coordinate.
type Service interface {
	Status(ctx context.Context, p spatial.Point) (Status, error)
	POIs() []POI
}

type service struct {
	cfg    Config
	client Client
	cache  Cache
	logger *slog.Logger
}

// NewService wires the citydata lookup.
func NewService(cfg Config, client Client, cache Cache, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		cache:  cache,
		logger: logger.With("component", "citydata.service"),
	}
}

func (s *service) POIs() []POI {
	return POIs()
}

// Status never fails on upstream trouble; missing blocks are reported in
// Degraded instead.
func (s *service) Status(ctx context.Context, p spatial.Point) (Status, error) {
	if !p.Valid() {
		return Status{}, apperrors.Wrap(apperrors.CodeInvalidInput, "lat/lng out of range", nil)
	}
	poi, ok := Nearest(p)
	if !ok {
		return Status{}, apperrors.Wrap(apperrors.CodeNotFound, "no hotspot configured", nil)
	}
	status := Status{
		POI:        poi,
		DistanceKm: math.Round(spatial.HaversineKm(p, poi.Point())*1000) / 1000,
		Degraded:   []Degraded{},
	}

	area, cached, err := s.cache.Get(ctx, poi.Code)
	if err != nil {
		s.logger.Warn("citydata cache read failed", "poi", poi.Code, "error", err)
	}
	if !cached {
		area, err = s.fetch(ctx, poi)
		if err != nil {
			s.logger.Warn("citydata fetch failed", "poi", poi.Code, "error", err)
			status.Degraded = append(status.Degraded,
				Degraded{Subsystem: SubsystemWeather, Reason: err.Error()},
				Degraded{Subsystem: SubsystemCongestion, Reason: err.Error()},
			)
			return status, nil
		}
		if area.Weather != nil || area.Congestion != nil {
			if err := s.cache.Put(ctx, area); err != nil {
				s.logger.Warn("citydata cache write failed", "poi", poi.Code, "error", err)
			}
		}
	}

	status.Cached = cached
	status.FetchedAt = area.FetchedAt
	status.Weather = area.Weather
	status.Congestion = area.Congestion
	if area.Weather == nil {
		status.Degraded = append(status.Degraded, Degraded{Subsystem: SubsystemWeather, Reason: "no data"})
	}
	if area.Congestion == nil {
		status.Degraded = append(status.Degraded, Degraded{Subsystem: SubsystemCongestion, Reason: "no data"})
	}
	return status, nil
}

func (s *service) fetch(ctx context.Context, poi POI) (Area, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	area, err := s.client.Fetch(ctx, poi)
	if err != nil {
		return Area{}, err
	}
	if area.Code == "" {
		area.Code = poi.Code
	}
	if area.Name == "" {
		area.Name = poi.Name
	}
	return area, nil
}
