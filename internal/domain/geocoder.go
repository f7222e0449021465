package domain

import "context"

// GeocodeCandidate is one match returned by a geocoding provider.
type GeocodeCandidate struct {
	Point       Point
	DisplayName string
}

// Geocoder resolves free-text addresses to points.
type Geocoder interface {
	// Geocode returns zero or more candidates, best match first.
	Geocode(ctx context.Context, address string) ([]GeocodeCandidate, error)
}
