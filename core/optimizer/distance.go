package optimizer

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// ReferenceLatitude calibrates the flat-earth projection.
	ReferenceLatitude = 40.72
	// DefaultSpeedKMH is the average truck speed in city traffic.
	DefaultSpeedKMH = 12.0

	metersPerDegreeLat = 111132.92
)

var metersPerDegreeLon = func() float64 {
	lat0 := ReferenceLatitude * math.Pi / 180
	return 111412.84*math.Cos(lat0) - 93.5*math.Cos(3*lat0)
}()

// ProjectedDistanceMeters is the Euclidean distance between two points after
// an equirectangular projection around ReferenceLatitude.
func ProjectedDistanceMeters(lon1, lat1, lon2, lat2 float64) float64 {
	p := []float64{lon1 * metersPerDegreeLon, lat1 * metersPerDegreeLat}
	q := []float64{lon2 * metersPerDegreeLon, lat2 * metersPerDegreeLat}
	return floats.Distance(p, q, 2)
}

// TravelTimeBins converts a distance to whole bins of travel at speedKMH,
// rounding up. Every move costs at least one bin.
func TravelTimeBins(distanceMeters, speedKMH float64, binMinutes int) int {
	if speedKMH <= 0 {
		speedKMH = DefaultSpeedKMH
	}
	if binMinutes <= 0 {
		binMinutes = 5
	}
	minutes := distanceMeters / (speedKMH * 1000 / 60)
	bins := int(math.Ceil(minutes / float64(binMinutes)))
	if bins < 1 {
		return 1
	}
	return bins
}
