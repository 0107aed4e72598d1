package delivery

import (
	"context"
	"math"

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
)

// DistanceEstimator resolves two pincodes to a travel distance in km. It
// fails soft: any geocoding failure yields ok=false, and a routing failure
// falls back to great-circle distance. It never aborts pricing.
type DistanceEstimator struct {
	geo client.GeoClient
}

func NewDistanceEstimator(geo client.GeoClient) *DistanceEstimator {
	return &DistanceEstimator{geo: geo}
}

func (e *DistanceEstimator) Estimate(ctx context.Context, fromPincode, toPincode string) (float64, bool) {
	from, err := e.geo.Geocode(ctx, fromPincode)
	if err != nil {
		return 0, false
	}
	to, err := e.geo.Geocode(ctx, toPincode)
	if err != nil {
		return 0, false
	}

	if km, err := e.geo.RouteDistanceKm(ctx, from, to); err == nil {
		return round2(km), true
	}

	return round2(haversineKm(from, to)), true
}

const earthRadiusKm = 6371

func haversineKm(from, to *client.Coordinates) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(to.Lat - from.Lat)
	dLon := toRad(to.Lon - from.Lon)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*math.Pow(math.Sin(dLon/2), 2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
