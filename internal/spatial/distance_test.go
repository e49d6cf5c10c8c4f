package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversineMeters(t *testing.T) {
	cityHall := Point{Lat: 37.5663, Lng: 126.9779}
	gangnam := Point{Lat: 37.4979, Lng: 127.0276}

	d := HaversineKm(cityHall, gangnam)
	require.InDelta(t, 8.8, d, 0.3)
	require.Zero(t, HaversineMeters(cityHall, cityHall))
}

func TestHaversineSmallOffset(t *testing.T) {
	a := Point{Lat: 37.5, Lng: 127.0}
	b := Point{Lat: 37.5009, Lng: 127.0} // ~100 m north
	require.InDelta(t, 100, HaversineMeters(a, b), 1)
}

func TestPointValid(t *testing.T) {
	require.True(t, Point{Lat: 37.5, Lng: 127}.Valid())
	require.False(t, Point{Lat: 91, Lng: 0}.Valid())
	require.False(t, Point{Lat: 0, Lng: -181}.Valid())
	require.False(t, Point{Lat: math.NaN(), Lng: 0}.Valid())
}

func TestSquaredDegrees(t *testing.T) {
	require.InDelta(t, 0.0002, SquaredDegrees(Point{0, 0}, Point{0.01, 0.01}), 1e-12)
}
