package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samplePoints = []Coordinate{
	{0, 0},
	{55.95, -3.19},
	{55.90, -3.20},
	{40.7128, -74.0060},
	{-33.8688, 151.2093},
	{90, 0},
	{-90, 180},
	{12.5, -180},
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coordinate
		want      float64
		tolerance float64
	}{
		{"same point", Coordinate{50, 10}, Coordinate{50, 10}, 0, 0},
		{"new york to london", Coordinate{40.7128, -74.0060}, Coordinate{51.5074, -0.1278}, 5570, 10},
		{"sydney to tokyo", Coordinate{-33.8688, 151.2093}, Coordinate{35.6762, 139.6503}, 7823, 10},
		{"antipodal on equator", Coordinate{0, 0}, Coordinate{0, 180}, math.Pi * EarthRadiusKm, 1e-6},
		{"pole to pole", Coordinate{90, 0}, Coordinate{-90, 0}, math.Pi * EarthRadiusKm, 1e-6},
		{"edinburgh short hop", Coordinate{55.95, -3.19}, Coordinate{55.9501, -3.1899}, 0.013, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), tt.tolerance)
		})
	}
}

func TestDistanceKmProperties(t *testing.T) {
	maxKm := math.Pi * EarthRadiusKm

	for _, a := range samplePoints {
		assert.Zero(t, DistanceKm(a, a), "distance from %v to itself", a)

		for _, b := range samplePoints {
			d := DistanceKm(a, b)
			assert.Equal(t, d, DistanceKm(b, a), "symmetry %v %v", a, b)
			assert.GreaterOrEqual(t, d, 0.0)
			assert.LessOrEqual(t, d, maxKm+1e-9)
		}
	}
}

func TestAntipodalDistance(t *testing.T) {
	assert.InDelta(t, 20015.1, DistanceKm(Coordinate{0, 0}, Coordinate{0, 180}), 0.1)
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{0, 0}, true},
		{Coordinate{90, 180}, true},
		{Coordinate{-90, -180}, true},
		{Coordinate{90.0001, 0}, false},
		{Coordinate{0, -180.5}, false},
		{Coordinate{math.NaN(), 0}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.c.Valid(), "%v", tt.c)
	}
}
