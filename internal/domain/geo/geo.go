// Package geo ranks candidates by great-circle distance.
package geo

import (
	"math"
	"sort"
)

// EarthRadiusKm is the mean Earth radius used by Haversine
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dPhi/2), 2) + math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Ranked pairs a candidate with its distance from the search origin.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// Rank keeps candidates within radiusKm of origin, nearest first. Candidates
// for which locate reports no position are excluded.
func Rank[T any](origin Point, candidates []T, locate func(T) (Point, bool), radiusKm float64) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		p, ok := locate(c)
		if !ok {
			continue
		}
		d := Haversine(origin.Lat, origin.Lon, p.Lat, p.Lon)
		if d <= radiusKm {
			ranked = append(ranked, Ranked[T]{Item: c, DistanceKm: d})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DistanceKm < ranked[j].DistanceKm })
	return ranked
}
