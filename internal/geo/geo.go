// Package geo provides great-circle distance calculations between
// geographic coordinates using the Haversine formula.
package geo

import "math"

// EarthRadiusKM is the Earth's radius in kilometers.
const EarthRadiusKM = 6371.0

// Coordinate is a WGS84 lat/lng pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Haversine returns the great-circle distance in kilometers between two
// points given their latitudes and longitudes in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

// Distance returns the great-circle distance in kilometers between two coordinates.
func Distance(a, b Coordinate) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
