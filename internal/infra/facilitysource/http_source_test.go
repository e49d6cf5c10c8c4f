package facilitysource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

func TestHTTPSourceNormalizesWrappedList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cooling-centers/nearby", r.URL.Path)
		require.Equal(t, "37.566300", r.URL.Query().Get("lat"))
		require.Equal(t, "0.500", r.URL.Query().Get("radius"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[
			{"id":7,"name":"소공동 주민센터","latitude":"37.5663","longitude":"126.9779","congestion":"약간 붐빔","isReservable":false},
			{"id":8,"name":"좌표 없음"},
			"garbage"
		]}`))
	}))
	defer server.Close()

	src := NewHTTPSource(search.CategoryCoolingCenter, server.URL+"/", nil)
	items, err := src.Fetch(context.Background(), facility.NearbyQuery{
		Center:   spatial.Point{Lat: 37.5663, Lng: 126.9779},
		RadiusKm: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "cooling_center-7", items[0].ID)
	require.Equal(t, search.CategoryCoolingCenter, items[0].Category)
	require.Equal(t, spatial.Point{Lat: 37.5663, Lng: 126.9779}, items[0].Position)
	require.Equal(t, facility.CongestionBusy, items[0].CongestionLevel)
	require.NotNil(t, items[0].IsReservable)
	require.False(t, *items[0].IsReservable)
}

func TestHTTPSourceSurfacesBackendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHTTPSource(search.CategoryPark, server.URL, nil).Fetch(context.Background(), facility.NearbyQuery{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=503")
}

func TestNormalizeResponseShapes(t *testing.T) {
	items, err := normalizeResponse([]byte(`[{"stationId":"ST-1","stationName":"여의나루역 1번출구","lat":37.527,"lng":126.932}]`), search.CategoryBike)
	require.NoError(t, err)
	require.Equal(t, "bike-ST-1", items[0].ID)

	items, err = normalizeResponse([]byte(`{"result":{"content":[]}}`), search.CategoryPark)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = normalizeResponse([]byte(`{"message":"ok"}`), search.CategoryPark)
	require.Error(t, err)
	_, err = normalizeResponse([]byte(`<html>`), search.CategoryPark)
	require.Error(t, err)
}

func TestSeedSourcesCoverEveryCategory(t *testing.T) {
	sources := NewSeedSources()
	require.Len(t, sources, len(search.Categories()))
	svc := facility.NewService(facility.Config{DefaultRadiusKm: 1, MaxRadiusKm: 5}, sources, logger.Discard())
	snap, err := svc.Nearby(context.Background(), facility.NearbyQuery{Center: spatial.Point{Lat: 37.5663, Lng: 126.9779}})
	require.NoError(t, err)
	require.Empty(t, snap.Degraded)
	require.NotEmpty(t, snap.Clusters)
	require.Equal(t, 3, snap.Clusters[0].Count)
}
