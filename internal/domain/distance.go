package domain

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances
const EarthRadiusMeters = 6371008.8

// Distance returns the great-circle distance in meters between two located
// nodes. ok is false if either node has no coordinates.
func Distance(a, b Node) (meters float64, ok bool) {
	if !a.HasLocation() || !b.HasLocation() {
		return 0, false
	}
	return Haversine(*a.Lat, *a.Lng, *b.Lat, *b.Lng), true
}

// Haversine computes the great-circle distance in meters between two points
// given in decimal degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(s)))
}

// SuggestWeight returns the distance between two nodes rounded to the
// nearest meter, for use as a default connection cost.
func SuggestWeight(a, b Node) (Weight, error) {
	meters, ok := Distance(a, b)
	if !ok {
		missing := a.ID
		if a.HasLocation() {
			missing = b.ID
		}
		return 0, fmt.Errorf("node %s: %w", missing, ErrNoLocation)
	}
	return Weight(math.Round(meters)), nil
}
