package facility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

var cityHall = spatial.Point{Lat: 37.5663, Lng: 126.9779}

func TestNearbyToleratesPartialFailure(t *testing.T) {
	sources := []Source{
		&stubSource{cat: search.CategoryLibrary, items: []Facility{
			{ID: "lib-near", Name: "서울도서관", Position: spatial.Point{Lat: 37.5662, Lng: 126.9778}},
			{ID: "lib-far", Name: "먼 도서관", Position: spatial.Point{Lat: 37.70, Lng: 127.10}},
		}},
		&stubSource{cat: search.CategoryPark, err: errors.New("backend 503")},
		&stubSource{cat: search.CategoryBike, items: []Facility{
			{ID: "bike-1", Category: search.CategoryBike, Position: spatial.Point{Lat: 37.5670, Lng: 126.9790}},
			{ID: "bike-2", Category: search.CategoryBike, Position: spatial.Point{Lat: 37.5670, Lng: 126.9790}},
			{ID: "bike-zero", Category: search.CategoryBike},
		}},
	}
	svc := NewService(Config{DefaultRadiusKm: 1, MaxRadiusKm: 5, FetchTimeout: time.Second}, sources, logger.Discard())

	snap, err := svc.Nearby(context.Background(), NearbyQuery{Center: cityHall})
	require.NoError(t, err)
	require.Equal(t, 3, snap.Total)
	require.Len(t, snap.Singles, 1)
	require.Equal(t, "lib-near", snap.Singles[0].ID)
	require.Equal(t, search.CategoryLibrary, snap.Singles[0].Category)
	require.NotNil(t, snap.Singles[0].DistanceKm)
	require.Len(t, snap.Clusters, 1)
	require.Equal(t, 2, snap.Clusters[0].Count)
	require.Equal(t, []Degraded{{Category: search.CategoryPark, Reason: "backend 503"}}, snap.Degraded)
}

func TestNearbyFiltersCategories(t *testing.T) {
	lib := &stubSource{cat: search.CategoryLibrary}
	park := &stubSource{cat: search.CategoryPark}
	svc := NewService(Config{}, []Source{lib, park}, logger.Discard())

	snap, err := svc.Nearby(context.Background(), NearbyQuery{
		Center:     cityHall,
		Categories: []search.Category{search.CategoryPark, search.CategoryPark, search.CategoryCoolingCenter},
	})
	require.NoError(t, err)
	require.Zero(t, lib.calls)
	require.Equal(t, 1, park.calls)
	require.Equal(t, []Degraded{{Category: search.CategoryCoolingCenter, Reason: "no source configured"}}, snap.Degraded)
}

func TestNearbyValidation(t *testing.T) {
	svc := NewService(Config{DefaultRadiusKm: 1, MaxRadiusKm: 5}, nil, logger.Discard())
	ctx := context.Background()

	_, err := svc.Nearby(ctx, NearbyQuery{Center: spatial.Point{Lat: 100, Lng: 0}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Nearby(ctx, NearbyQuery{Center: cityHall, RadiusKm: 6})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Nearby(ctx, NearbyQuery{Center: cityHall, Categories: []search.Category{"museum"}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestNearbyFetchTimeout(t *testing.T) {
	slow := &stubSource{cat: search.CategoryPark, block: true}
	svc := NewService(Config{FetchTimeout: 20 * time.Millisecond}, []Source{slow}, logger.Discard())

	snap, err := svc.Nearby(context.Background(), NearbyQuery{Center: cityHall})
	require.NoError(t, err)
	require.Len(t, snap.Degraded, 1)
	require.Equal(t, search.CategoryPark, snap.Degraded[0].Category)
}

type stubSource struct {
	cat   search.Category
	items []Facility
	err   error
	block bool
	calls int
}

func (s *stubSource) Category() search.Category { return s.cat }

func (s *stubSource) Fetch(ctx context.Context, _ NearbyQuery) ([]Facility, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}
