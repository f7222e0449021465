// Package domain models hospital coverage around a geographic point.
//
// # Data Source
//
// Facilities come from OpenStreetMap. The POI collaborator asks the Overpass
// API for every node tagged amenity=hospital within [SearchRadiusMeters] of
// the analysed point. Addresses are resolved to points by a geocoding
// collaborator (Nominatim); only the first candidate is used.
//
// # Distance
//
// Distances are great-circle distances on a sphere of radius
// [EarthRadiusMeters], the same model Leaflet uses for LatLng.distanceTo,
// so figures match what the browser map shows.
//
// # Buckets
//
// Every facility within the search radius falls into exactly one bucket.
// Boundaries belong to the nearer bucket:
//
//	near    d <= 1000 m
//	medium  1000 m < d <= 3000 m
//	far     3000 m < d <= 5000 m
//
// Facilities beyond 5000 m are excluded: they are not counted, get no marker
// and cannot be the nearest facility.
//
// # Coverage Level
//
// The score weights buckets by proximity:
//
//	score = 3*near + 2*medium + 1*far
//
//	score >= 5  good
//	score >= 2  moderate
//	otherwise   low
//
// An empty facility set is low coverage with no nearest facility. The level
// is a pure function of the three counts, see [LevelFor].
package domain
