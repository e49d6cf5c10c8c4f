package facility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/spatial"
)

func TestPositionKey(t *testing.T) {
	require.Equal(t, "37.123456,127.123456", PositionKey(spatial.Point{Lat: 37.123456, Lng: 127.123456}))
	require.Equal(t, "37.500000,-0.000001", PositionKey(spatial.Point{Lat: 37.5, Lng: -0.000001}))
	require.Equal(t, "-33.868820,151.209290", PositionKey(spatial.Point{Lat: -33.86882, Lng: 151.20929}))
	require.Equal(t, "37.123455,127.123455", PositionKey(spatial.Point{Lat: 37.1234556, Lng: 127.1234559}))
	require.Equal(t, "37.123456,127.123456", PositionKey(spatial.Point{Lat: 37.1234564, Lng: 127.1234564}))
}

func TestClusterSplitsBeyondSixthDecimal(t *testing.T) {
	a := Facility{ID: "a", Category: search.CategoryBike, Position: spatial.Point{Lat: 37.123456, Lng: 127.123456}}
	b := Facility{ID: "b", Category: search.CategoryBike, Position: spatial.Point{Lat: 37.1234561, Lng: 127.1234559}}

	res := ClusterFacilities([]Facility{a, b})
	require.Empty(t, res.Clusters)
	require.Len(t, res.SingleFacilities, 2)
}

func TestClusterGroupsCoincidentFacilities(t *testing.T) {
	station := spatial.Point{Lat: 37.555946, Lng: 126.972317}
	facilities := []Facility{
		{ID: "bike-1", Category: search.CategoryBike, Position: station},
		{ID: "lonely", Category: search.CategoryPark, Position: spatial.Point{Lat: 37.54, Lng: 126.99}},
		{ID: "bike-2", Category: search.CategoryBike, Position: spatial.Point{Lat: 37.5559461, Lng: 126.9723171}},
		{ID: "sub-1", Category: search.CategorySubway, Position: station},
	}

	res := ClusterFacilities(facilities)
	require.Len(t, res.Clusters, 1)
	require.Len(t, res.SingleFacilities, 1)
	require.Equal(t, "lonely", res.SingleFacilities[0].ID)

	c := res.Clusters[0]
	require.Equal(t, "cluster-37.555946,126.972317", c.ID)
	require.Equal(t, 3, c.Count)
	require.Equal(t, station, c.Position)
	require.Equal(t, map[search.Category]int{search.CategoryBike: 2, search.CategorySubway: 1}, c.CategoryCounts)
	require.Equal(t, search.CategoryBike, c.PrimaryCategory)
}

func TestClusterPrimaryCategoryTieIsAlphabetical(t *testing.T) {
	p := spatial.Point{Lat: 37.5, Lng: 127.0}
	res := ClusterFacilities([]Facility{
		{ID: "1", Category: search.CategoryRestaurant, Position: p},
		{ID: "2", Category: search.CategoryLibrary, Position: p},
		{ID: "3", Category: search.CategoryCoolingCenter, Position: p},
	})
	require.Len(t, res.Clusters, 1)
	require.Equal(t, search.CategoryCoolingCenter, res.Clusters[0].PrimaryCategory)
}

func TestClusterMembershipIsExclusive(t *testing.T) {
	points := []spatial.Point{
		{Lat: 37.1, Lng: 127.1}, {Lat: 37.1, Lng: 127.1}, {Lat: 37.2, Lng: 127.2},
		{Lat: 37.3, Lng: 127.3}, {Lat: 37.3, Lng: 127.3}, {Lat: 37.3, Lng: 127.3},
	}
	facilities := make([]Facility, 0, len(points))
	for i, p := range points {
		facilities = append(facilities, Facility{ID: string(rune('a' + i)), Category: search.CategoryPark, Position: p})
	}

	res := ClusterFacilities(facilities)
	seen := map[string]int{}
	for _, c := range res.Clusters {
		require.GreaterOrEqual(t, c.Count, 2)
		for _, f := range c.Facilities {
			seen[f.ID]++
			require.Equal(t, PositionKey(c.Position), PositionKey(f.Position))
		}
	}
	for _, f := range res.SingleFacilities {
		seen[f.ID]++
	}
	require.Len(t, seen, len(facilities))
	for id, n := range seen {
		require.Equal(t, 1, n, id)
	}
	require.Len(t, res.SingleFacilities, 1)
	require.Equal(t, "c", res.SingleFacilities[0].ID)
}

func TestClusterEmptyInput(t *testing.T) {
	res := ClusterFacilities(nil)
	require.NotNil(t, res.Clusters)
	require.NotNil(t, res.SingleFacilities)
	require.Empty(t, res.Clusters)
}
