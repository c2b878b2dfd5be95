package db

import (
	"context"

	"bus-fleet/internal/tracking-service/core/domain/model"
)

type GeofenceRepository struct {
	db *DataBase
}

func NewGeofenceRepository(db *DataBase) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

// ListActive returns the vehicle's active zones in stored order. The
// geofence monitor relies on this ordering for its first-match policy.
func (gr *GeofenceRepository) ListActive(ctx context.Context, vehicleID string) ([]model.Geofence, error) {
	SelectQuery := `
		SELECT geofence_id, vehicle_id, name, center_lat, center_lon, radius_meters, is_active, alert_on_enter, alert_on_exit
		FROM geofences
		WHERE vehicle_id = $1 AND is_active = true
		ORDER BY geofence_id;
	`
	rows, err := gr.db.GetConn().Query(ctx, SelectQuery, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Geofence
	for rows.Next() {
		var g model.Geofence
		if err := rows.Scan(
			&g.ID,
			&g.VehicleID,
			&g.Name,
			&g.CenterLat,
			&g.CenterLon,
			&g.RadiusMeters,
			&g.IsActive,
			&g.AlertOnEnter,
			&g.AlertOnExit,
		); err != nil {
			return nil, err
		}
		results = append(results, g)
	}
	return results, rows.Err()
}
