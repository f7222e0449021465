package domain

import "context"

// UnnamedFacility is the display name for facilities without a name tag.
const UnnamedFacility = "Unnamed hospital"

// SearchRadiusMeters bounds the POI query around the analysed point.
const SearchRadiusMeters = 5000.0

// Tag is an OpenStreetMap key=value pair selecting a facility category.
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string { return t.Key + "=" + t.Value }

// HospitalTag selects hospitals.
var HospitalTag = Tag{Key: "amenity", Value: "hospital"}

// Facility is a single POI returned by the query collaborator.
type Facility struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	Location Point  `json:"location"`
}

// NewFacility builds a Facility, substituting UnnamedFacility for an empty name.
func NewFacility(id int64, name string, location Point) Facility {
	if name == "" {
		name = UnnamedFacility
	}
	return Facility{ID: id, Name: name, Location: location}
}

// FacilityQuery describes a radius search for one facility category.
type FacilityQuery struct {
	Center       Point
	Tag          Tag
	RadiusMeters float64
}

// HospitalQuery returns the fixed query used for coverage analysis.
func HospitalQuery(center Point) FacilityQuery {
	return FacilityQuery{Center: center, Tag: HospitalTag, RadiusMeters: SearchRadiusMeters}
}

// FacilityFinder queries a point-of-interest service.
type FacilityFinder interface {
	FindFacilities(ctx context.Context, q FacilityQuery) ([]Facility, error)
}
