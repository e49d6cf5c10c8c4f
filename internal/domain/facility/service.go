package facility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

// Source fetches the facilities of a single category around a point.
type Source interface {
	Category() search.Category
	Fetch(ctx context.Context, q NearbyQuery) ([]Facility, error)
}

// Service exposes clustering and nearby lookups.
type Service interface {
	Cluster(facilities []Facility) ClusterResult
	Nearby(ctx context.Context, q NearbyQuery) (Snapshot, error)
}

type service struct {
	cfg     Config
	sources map[search.Category]Source
	order   []search.Category
	logger  *slog.Logger
}

// NewService registers one source per category; later duplicates win.
func NewService(cfg Config, sources []Source, logger *slog.Logger) Service {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = 1
	}
	if cfg.MaxRadiusKm < cfg.DefaultRadiusKm {
		cfg.MaxRadiusKm = cfg.DefaultRadiusKm
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	s := &service{
		cfg:     cfg,
		sources: make(map[search.Category]Source, len(sources)),
		logger:  logger.With("component", "facility.service"),
	}
	for _, src := range sources {
		cat := src.Category()
		if _, ok := s.sources[cat]; !ok {
			s.order = append(s.order, cat)
		}
		s.sources[cat] = src
	}
	return s
}

func (s *service) Cluster(facilities []Facility) ClusterResult {
	return ClusterFacilities(facilities)
}

func (s *service) Nearby(ctx context.Context, q NearbyQuery) (Snapshot, error) {
	if !q.Center.Valid() {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, "center must be a valid lat/lng", nil)
	}
	if q.RadiusKm == 0 {
		q.RadiusKm = s.cfg.DefaultRadiusKm
	}
	if q.RadiusKm < 0 || q.RadiusKm > s.cfg.MaxRadiusKm {
		return Snapshot{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("radius must be between 0 and %.1f km", s.cfg.MaxRadiusKm), nil)
	}
	categories, err := s.resolveCategories(q.Categories)
	if err != nil {
		return Snapshot{}, err
	}

	perCategory := make([][]Facility, len(categories))
	var (
		mu       sync.Mutex
		degraded []Degraded
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, cat := range categories {
		i, cat := i, cat
		src, ok := s.sources[cat]
		if !ok {
			mu.Lock()
			degraded = append(degraded, Degraded{Category: cat, Reason: "no source configured"})
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			fetchCtx := gctx
			if s.cfg.FetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gctx, s.cfg.FetchTimeout)
				defer cancel()
			}
			items, err := src.Fetch(fetchCtx, q)
			if err != nil {
				s.logger.Warn("facility fetch failed", "category", cat, "error", err)
				mu.Lock()
				degraded = append(degraded, Degraded{Category: cat, Reason: err.Error()})
				mu.Unlock()
				return nil
			}
			perCategory[i] = items
			return nil
		})
	}
	_ = g.Wait()

	visible := filterByRadius(q.Center, q.RadiusKm, categories, perCategory)
	clusters := ClusterFacilities(visible)

	sort.Slice(degraded, func(i, j int) bool {
		return degraded[i].Category.Priority() < degraded[j].Category.Priority()
	})
	if degraded == nil {
		degraded = []Degraded{}
	}
	return Snapshot{
		Center:   q.Center,
		RadiusKm: q.RadiusKm,
		Total:    len(visible),
		Clusters: clusters.Clusters,
		Singles:  clusters.SingleFacilities,
		Degraded: degraded,
	}, nil
}

func (s *service) resolveCategories(requested []search.Category) ([]search.Category, error) {
	if len(requested) == 0 {
		out := make([]search.Category, len(s.order))
		copy(out, s.order)
		return out, nil
	}
	out := make([]search.Category, 0, len(requested))
	seen := make(map[search.Category]struct{}, len(requested))
	for _, cat := range requested {
		if !cat.Known() {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown category %q", cat), nil)
		}
		if _, dup := seen[cat]; dup {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out, nil
}

// filterByRadius flattens the per-category results, drops anything outside
// the radius and orders the rest by distance.
func filterByRadius(center spatial.Point, radiusKm float64, categories []search.Category, perCategory [][]Facility) []Facility {
	out := make([]Facility, 0)
	for i, items := range perCategory {
		for _, f := range items {
			if !f.Position.Valid() || (f.Position.Lat == 0 && f.Position.Lng == 0) {
				continue
			}
			d := spatial.HaversineKm(center, f.Position)
			if d > radiusKm {
				continue
			}
			rounded := math.Round(d*1000) / 1000
			f.DistanceKm = &rounded
			if f.Category == "" {
				f.Category = categories[i]
			}
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out
}
