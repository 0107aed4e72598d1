package delivery

import (
	"context"
	"errors"
	"testing"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/stretchr/testify/assert"
)

// fixedGeo returns preset coordinates per pincode, so the haversine fallback
// can be checked against a known great-circle distance.
type fixedGeo struct {
	coords   map[string]*client.Coordinates
	routeKm  float64
	routeErr error
}

func (f *fixedGeo) Geocode(ctx context.Context, pincode string) (*client.Coordinates, error) {
	c, ok := f.coords[pincode]
	if !ok {
		return nil, errors.New("pincode not found")
	}
	return c, nil
}

func (f *fixedGeo) RouteDistanceKm(ctx context.Context, from, to *client.Coordinates) (float64, error) {
	if f.routeErr != nil {
		return 0, f.routeErr
	}
	return f.routeKm, nil
}

func TestEstimateUsesRoutedDistance(t *testing.T) {
	geo := &fixedGeo{
		coords: map[string]*client.Coordinates{
			"273001": {Lat: 26.7606, Lon: 83.3732},
			"273004": {Lat: 26.7271, Lon: 83.4358},
		},
		routeKm: 8.437,
	}

	km, ok := NewDistanceEstimator(geo).Estimate(context.Background(), "273001", "273004")
	assert.True(t, ok)
	assert.Equal(t, 8.44, km)
}

func TestEstimateFallsBackToHaversine(t *testing.T) {
	// one degree of longitude on the equator is about 111.19 km
	geo := &fixedGeo{
		coords: map[string]*client.Coordinates{
			"273001": {Lat: 0, Lon: 0},
			"110001": {Lat: 0, Lon: 1},
		},
		routeErr: errors.New("osrm down"),
	}

	km, ok := NewDistanceEstimator(geo).Estimate(context.Background(), "273001", "110001")
	assert.True(t, ok)
	assert.InDelta(t, 111.19, km, 0.05)
}

func TestEstimateFailsSoftOnGeocodeError(t *testing.T) {
	geo := &fixedGeo{
		coords: map[string]*client.Coordinates{
			"273001": {Lat: 26.76, Lon: 83.37},
		},
	}

	km, ok := NewDistanceEstimator(geo).Estimate(context.Background(), "273001", "999999")
	assert.False(t, ok)
	assert.Zero(t, km)

	km, ok = NewDistanceEstimator(geo).Estimate(context.Background(), "999999", "273001")
	assert.False(t, ok)
	assert.Zero(t, km)
}
