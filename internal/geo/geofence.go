package geo

import (
	"math"

	"github.com/Vasugoli/classTrack/internal/config"
)

const earthRadiusMeters = 6371000

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters computes the great-circle distance between two points using
// the haversine formula on a mean Earth radius.
func DistanceMeters(a, b Location) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ValidCoordinates reports whether latitude and longitude fall in their
// geographic ranges. NaN and infinities are rejected.
func ValidCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		math.IsInf(latitude, 0) || math.IsInf(longitude, 0) {
		return false
	}
	if latitude < -90 || latitude > 90 {
		return false
	}
	if longitude < -180 || longitude > 180 {
		return false
	}
	return true
}

// Sanitize validates coordinates and truncates them to 8 decimal places
// (~1mm) to bound what gets stored and logged. Returns nil for invalid
// input; callers must treat that as a hard rejection.
func Sanitize(latitude, longitude float64) *Location {
	if !ValidCoordinates(latitude, longitude) {
		return nil
	}
	return &Location{
		Latitude:  truncate8(latitude),
		Longitude: truncate8(longitude),
	}
}

func truncate8(v float64) float64 {
	return math.Trunc(v*1e8) / 1e8
}

// Fence is a circular boundary around a campus center.
type Fence struct {
	Center Location
	Radius float64
}

func NewFence(cfg config.GeoConfig) Fence {
	return Fence{
		Center: Location{Latitude: cfg.CampusLatitude, Longitude: cfg.CampusLongitude},
		Radius: cfg.CampusRadius,
	}
}

// Contains reports whether loc is inside the fence. The boundary is
// inclusive: a point exactly at the radius is accepted.
func (f Fence) Contains(loc Location) bool {
	return DistanceMeters(loc, f.Center) <= f.Radius
}

// Distance returns the distance in meters from loc to the fence center.
func (f Fence) Distance(loc Location) float64 {
	return DistanceMeters(loc, f.Center)
}
