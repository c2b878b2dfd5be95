package services

import (
	"context"
	"fmt"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/ports/driven"
	portsdriver "bus-fleet/internal/tracking-service/core/ports/driver"
)

type GeofenceService struct {
	geofences driven.IGeofenceRepository
	tracking  portsdriver.ITrackingService
	log       mylogger.Logger
}

func NewGeofenceService(
	geofences driven.IGeofenceRepository,
	tracking portsdriver.ITrackingService,
	log mylogger.Logger,
) *GeofenceService {
	return &GeofenceService{
		geofences: geofences,
		tracking:  tracking,
		log:       log,
	}
}

// CheckStatus evaluates the vehicle's current position against its active
// zones in stored order and returns the first zone containing it. This is
// a first-match policy, not closest-match: with overlapping zones the one
// stored first wins.
func (gs *GeofenceService) CheckStatus(ctx context.Context, vehicleID string) (dto.GeofenceStatusResponse, error) {
	loc, err := gs.tracking.GetCurrent(ctx, vehicleID)
	if err != nil {
		return dto.GeofenceStatusResponse{}, err
	}

	zones, err := gs.geofences.ListActive(ctx, vehicleID)
	if err != nil {
		return dto.GeofenceStatusResponse{}, fmt.Errorf("list geofences: %w", err)
	}

	for _, zone := range zones {
		dist := DistanceMeters(loc.Latitude, loc.Longitude, zone.CenterLat, zone.CenterLon)
		if dist <= zone.RadiusMeters {
			zoneID := zone.ID
			return dto.GeofenceStatusResponse{
				VehicleID:      vehicleID,
				Inside:         true,
				ZoneID:         &zoneID,
				ZoneName:       zone.Name,
				DistanceMeters: &dist,
			}, nil
		}
	}

	return dto.GeofenceStatusResponse{
		VehicleID: vehicleID,
		Inside:    false,
	}, nil
}
