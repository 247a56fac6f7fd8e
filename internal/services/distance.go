package services

import (
	"math"

	"binroute-backend/internal/models"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between a and b in kilometers
func Distance(a, b models.Coordinate) float64 {
	return haversineDistance(a.Lat, a.Lng, b.Lat, b.Lng)
}

// haversineDistance calculates the distance between two GPS coordinates in kilometers
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// roundKm rounds to 3 decimal places (meter precision)
func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}
