package service

import (
	"bizradar/internal/domain/entity"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// WithinRadius drops businesses the upstream returned outside the configured
// monitoring radius. The places API is treated as an external contract and
// mapped defensively; results that stray past the requested radius are noise,
// not data.
func WithinRadius(centerLat, centerLng float64, radiusMeters int, businesses []*entity.Business) []*entity.Business {
	center := orb.Point{centerLng, centerLat}

	kept := make([]*entity.Business, 0, len(businesses))
	for _, b := range businesses {
		point := orb.Point{b.Location.Longitude, b.Location.Latitude}
		if geo.Distance(center, point) <= float64(radiusMeters) {
			kept = append(kept, b)
		}
	}

	return kept
}

// DistanceMeters returns the haversine distance between the monitoring
// center and a business.
func DistanceMeters(centerLat, centerLng float64, b *entity.Business) float64 {
	return geo.Distance(
		orb.Point{centerLng, centerLat},
		orb.Point{b.Location.Longitude, b.Location.Latitude},
	)
}
