package citydata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

var gangnam = spatial.Point{Lat: 37.4980, Lng: 127.0277}

func TestStatusFetchesThenServesFromCache(t *testing.T) {
	temp := 31.5
	client := &stubClient{area: Area{
		Weather:    &Weather{Temperature: &temp},
		Congestion: &Congestion{Level: "붐빔"},
		FetchedAt:  time.Date(2024, 8, 1, 14, 0, 0, 0, time.UTC),
	}}
	svc := NewService(Config{}, client, NewMemoryCache(time.Minute), logger.Discard())
	ctx := context.Background()

	status, err := svc.Status(ctx, gangnam)
	require.NoError(t, err)
	require.Equal(t, "POI014", status.POI.Code)
	require.False(t, status.Cached)
	require.Empty(t, status.Degraded)
	require.Equal(t, 31.5, *status.Weather.Temperature)
	require.Equal(t, "붐빔", status.Congestion.Level)
	require.Less(t, status.DistanceKm, 0.1)

	status, err = svc.Status(ctx, gangnam)
	require.NoError(t, err)
	require.True(t, status.Cached)
	require.Equal(t, 1, client.calls)
}

func TestStatusReportsMissingBlocks(t *testing.T) {
	client := &stubClient{area: Area{Congestion: &Congestion{Level: "여유"}}}
	svc := NewService(Config{}, client, NewMemoryCache(time.Minute), logger.Discard())

	status, err := svc.Status(context.Background(), gangnam)
	require.NoError(t, err)
	require.Nil(t, status.Weather)
	require.Equal(t, []Degraded{{Subsystem: SubsystemWeather, Reason: "no data"}}, status.Degraded)
}

func TestStatusDegradesOnUpstreamFailure(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	client := &stubClient{err: errors.New("upstream 500")}
	svc := NewService(Config{}, client, cache, logger.Discard())

	status, err := svc.Status(context.Background(), gangnam)
	require.NoError(t, err)
	require.Len(t, status.Degraded, 2)
	require.Equal(t, SubsystemWeather, status.Degraded[0].Subsystem)
	require.Equal(t, "upstream 500", status.Degraded[1].Reason)
	require.Zero(t, cache.Len(), "failures are not cached")
}

func TestStatusSkipsCachingEmptyAreas(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	svc := NewService(Config{}, &stubClient{}, cache, logger.Discard())

	status, err := svc.Status(context.Background(), gangnam)
	require.NoError(t, err)
	require.Len(t, status.Degraded, 2)
	require.Zero(t, cache.Len())
}

func TestStatusValidatesCoordinates(t *testing.T) {
	svc := NewService(Config{}, &stubClient{}, NewMemoryCache(0), logger.Discard())
	_, err := svc.Status(context.Background(), spatial.Point{Lat: 95, Lng: 0})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestMemoryCacheExpires(t *testing.T) {
	cache := NewMemoryCache(time.Minute)
	now := time.Date(2024, 8, 1, 14, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, Area{Code: "POI014"}))
	_, ok, err := cache.Get(ctx, "POI014")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "POI014")
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, cache.Len())
}

type stubClient struct {
	area  Area
	err   error
	calls int
}

func (c *stubClient) Fetch(_ context.Context, poi POI) (Area, error) {
	c.calls++
	if c.err != nil {
		return Area{}, c.err
	}
	return c.area, nil
}
