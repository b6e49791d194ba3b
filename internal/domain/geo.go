package domain

import (
	"math"
	"sort"
)

// earthRadiusKm is the mean Earth radius used by the Haversine formula.
const earthRadiusKm = 6371.0

// LatLng is a geographic point in decimal degrees.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Distance computes the great-circle distance between two points using the
// Haversine formula, rounded to one decimal place. It is symmetric and zero
// iff both points are equal.
func Distance(a, b LatLng) float64 {
	dLat := degToRad(b.Latitude - a.Latitude)
	dLng := degToRad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(a.Latitude))*math.Cos(degToRad(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*10) / 10
}

// RankByDistance annotates each item with its distance from the user location
// and orders the list ascending by distance. Items without coordinates sort
// last; ties keep their original input order. Ascending is the only supported
// order. The input slice is not modified.
func RankByDistance(items []Candidate, user LatLng) []Candidate {
	ranked := make([]Candidate, len(items))
	copy(ranked, items)

	for i := range ranked {
		if !ranked[i].HasCoordinates() {
			ranked[i].Distance = nil
			continue
		}

		d := Distance(user, LatLng{Latitude: *ranked[i].Latitude, Longitude: *ranked[i].Longitude})
		ranked[i].Distance = &d
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return sortDistance(ranked[i]) < sortDistance(ranked[j])
	})

	return ranked
}

// FilterByRadius keeps items whose computed distance is known and at most
// radiusKm. Items that were never ranked are dropped.
func FilterByRadius(items []Candidate, radiusKm float64) []Candidate {
	var within []Candidate

	for _, item := range items {
		if item.Distance != nil && *item.Distance <= radiusKm {
			within = append(within, item)
		}
	}

	return within
}

// sortDistance maps a missing distance to +Inf so unlocated items sort last.
func sortDistance(item Candidate) float64 {
	if item.Distance == nil {
		return math.Inf(1)
	}

	return *item.Distance
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
