package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint_Validate(t *testing.T) {
	valid := []Point{
		{Lat: 0, Lon: 0},
		{Lat: 90, Lon: 180},
		{Lat: -90, Lon: -180},
		madrid,
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), "point %v", p)
	}

	invalid := []Point{
		{Lat: 90.0001, Lon: 0},
		{Lat: -91, Lon: 0},
		{Lat: 0, Lon: 180.5},
		{Lat: 0, Lon: -181},
		{Lat: math.NaN(), Lon: 0},
		{Lat: 0, Lon: math.NaN()},
	}
	for _, p := range invalid {
		err := p.Validate()
		require.Error(t, err, "point %v", p)
		assert.ErrorIs(t, err, ErrInvalidPoint)
	}
}

func TestPoint_DistanceTo(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		assert.InDelta(t, 0, madrid.DistanceTo(madrid), 1e-9)
	})

	t.Run("symmetric", func(t *testing.T) {
		barcelona := Point{Lat: 41.3874, Lon: 2.1686}
		assert.InDelta(t, madrid.DistanceTo(barcelona), barcelona.DistanceTo(madrid), 1e-6)
	})

	t.Run("madrid to barcelona", func(t *testing.T) {
		barcelona := Point{Lat: 41.3874, Lon: 2.1686}
		// ~505 km great-circle.
		assert.InDelta(t, 505_000, madrid.DistanceTo(barcelona), 3_000)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := Point{Lat: 0, Lon: 0}.DistanceTo(Point{Lat: 1, Lon: 0})
		assert.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1e-6)
	})

	t.Run("meters north helper", func(t *testing.T) {
		assert.InDelta(t, 1234.5, madrid.DistanceTo(northOf(madrid, 1234.5)), 1e-6)
	})
}

func TestNewFacility_DefaultName(t *testing.T) {
	f := NewFacility(1, "", madrid)
	assert.Equal(t, UnnamedFacility, f.Name)

	named := NewFacility(2, "Hospital La Paz", madrid)
	assert.Equal(t, "Hospital La Paz", named.Name)
}

func TestHospitalQuery(t *testing.T) {
	q := HospitalQuery(madrid)
	assert.Equal(t, madrid, q.Center)
	assert.Equal(t, "amenity=hospital", q.Tag.String())
	assert.Equal(t, 5000.0, q.RadiusMeters)
}
