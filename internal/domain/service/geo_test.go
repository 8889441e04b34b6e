package service

import (
	"testing"

	"bizradar/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedBusiness(placeID string, lat, lng float64) *entity.Business {
	return &entity.Business{
		PlaceID: placeID,
		Name:    placeID,
		Location: entity.Location{
			Latitude:  lat,
			Longitude: lng,
		},
	}
}

func TestWithinRadius(t *testing.T) {
	// Center at Union Square, San Francisco.
	centerLat, centerLng := 37.7880, -122.4075

	businesses := []*entity.Business{
		// ~70 m away, Oakland ~12 km away, and the center itself.
		placedBusiness("close", 37.7885, -122.4070),
		placedBusiness("far", 37.8044, -122.2712),
		placedBusiness("center", centerLat, centerLng),
	}

	kept := WithinRadius(centerLat, centerLng, 1000, businesses)

	require.Len(t, kept, 2)
	assert.Equal(t, "close", kept[0].PlaceID)
	assert.Equal(t, "center", kept[1].PlaceID)
}

func TestDistanceMeters(t *testing.T) {
	centerLat, centerLng := 37.7880, -122.4075
	b := placedBusiness("b", 37.7880, -122.4075)

	assert.InDelta(t, 0, DistanceMeters(centerLat, centerLng, b), 0.1)

	// Roughly one degree of latitude is 111 km.
	north := placedBusiness("north", 38.7880, -122.4075)
	assert.InDelta(t, 111_000, DistanceMeters(centerLat, centerLng, north), 1_000)
}
