package domain

import (
	"errors"
	"math"
	"time"
)

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

var (
	// ErrPermissionRevoked is the only location error that ends a session.
	ErrPermissionRevoked = errors.New("location permission revoked")
	// ErrLocationUnknown reports a transient failure to obtain a fix.
	ErrLocationUnknown = errors.New("location unknown")
)

// LocationFix is a single timestamped position reported by the device.
type LocationFix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// DistanceTo returns the haversine distance in meters between two fixes.
func (f LocationFix) DistanceTo(other LocationFix) float64 {
	lat1 := f.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	deltaLat := (other.Latitude - f.Latitude) * math.Pi / 180
	deltaLng := (other.Longitude - f.Longitude) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// LocationUpdate is either a fix or an error. Exactly one of Fix and Err is set.
type LocationUpdate struct {
	Fix *LocationFix
	Err error
}

// FixUpdate wraps a fix into an update.
func FixUpdate(fix LocationFix) LocationUpdate {
	return LocationUpdate{Fix: &fix}
}

// ErrorUpdate wraps an error into an update.
func ErrorUpdate(err error) LocationUpdate {
	return LocationUpdate{Err: err}
}

// IsPermissionRevoked reports whether the update terminates a session.
func (u LocationUpdate) IsPermissionRevoked() bool {
	return u.Err != nil && errors.Is(u.Err, ErrPermissionRevoked)
}
