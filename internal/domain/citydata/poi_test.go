package citydata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

func TestNearestPicksClosestHotspot(t *testing.T) {
	poi, ok := Nearest(spatial.Point{Lat: 37.4980, Lng: 127.0277})
	require.True(t, ok)
	require.Equal(t, "POI014", poi.Code)

	poi, ok = Nearest(spatial.Point{Lat: 37.5796, Lng: 126.9770})
	require.True(t, ok)
	require.Equal(t, "경복궁", poi.Name)

	poi, ok = Nearest(spatial.Point{Lat: 37.4275, Lng: 127.0168})
	require.True(t, ok)
	require.Equal(t, "서울대공원", poi.Name)

	poi, ok = Nearest(spatial.Point{Lat: 37.5659, Lng: 126.9781})
	require.True(t, ok)
	require.Equal(t, "POI101", poi.Code)
}

func TestNearestTieKeepsFirstEntry(t *testing.T) {
	table := []POI{
		{Code: "A", Lat: 0, Lng: 1},
		{Code: "B", Lat: 0, Lng: -1},
	}
	poi, ok := nearestIn(table, spatial.Point{})
	require.True(t, ok)
	require.Equal(t, "A", poi.Code)

	_, ok = nearestIn(nil, spatial.Point{})
	require.False(t, ok)
}

func TestHotspotTableIsWellFormed(t *testing.T) {
	seen := make(map[string]struct{})
	for _, poi := range POIs() {
		require.NotEmpty(t, poi.Name)
		require.True(t, poi.Point().Valid())
		require.InDelta(t, 37.55, poi.Lat, 0.15, poi.Code)
		require.InDelta(t, 126.99, poi.Lng, 0.2, poi.Code)
		_, dup := seen[poi.Code]
		require.False(t, dup, poi.Code)
		seen[poi.Code] = struct{}{}
	}
	require.GreaterOrEqual(t, len(seen), 120)
	got, ok := LookupPOI("POI033")
	require.True(t, ok)
	require.Equal(t, "서울역", got.Name)
}
