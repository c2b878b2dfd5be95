package db

import (
	"context"
	"errors"

	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

type RouteRepository struct {
	db *DataBase
}

func NewRouteRepository(db *DataBase) *RouteRepository {
	return &RouteRepository{db: db}
}

// GetActiveRoute returns the vehicle's active route with its active stops in
// sequence order. When more than one route is active, the first by route id
// wins.
func (rr *RouteRepository) GetActiveRoute(ctx context.Context, vehicleID string) (model.Route, error) {
	RouteQuery := `
		SELECT route_id, vehicle_id, name, is_active
		FROM routes
		WHERE vehicle_id = $1 AND is_active = true
		ORDER BY route_id
		LIMIT 1;
	`
	var route model.Route
	err := rr.db.GetConn().QueryRow(ctx, RouteQuery, vehicleID).Scan(
		&route.ID,
		&route.VehicleID,
		&route.Name,
		&route.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Route{}, myerrors.NotFound("no active route for vehicle %s", vehicleID)
		}
		return model.Route{}, err
	}

	StopsQuery := `
		SELECT stop_id, route_id, name, latitude, longitude, sequence, pickup_time, drop_time
		FROM route_stops
		WHERE route_id = $1 AND is_active = true
		ORDER BY sequence ASC;
	`
	rows, err := rr.db.GetConn().Query(ctx, StopsQuery, route.ID)
	if err != nil {
		return model.Route{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var stop model.RouteStop
		if err := rows.Scan(
			&stop.ID,
			&stop.RouteID,
			&stop.Name,
			&stop.Latitude,
			&stop.Longitude,
			&stop.Sequence,
			&stop.PickupTime,
			&stop.DropTime,
		); err != nil {
			return model.Route{}, err
		}
		route.Stops = append(route.Stops, stop)
	}
	return route, rows.Err()
}

// GetRecentStopVisits returns up to limit historical trip records touching
// the stop, newest first, for the delay predictor.
func (rr *RouteRepository) GetRecentStopVisits(ctx context.Context, stopID string, limit int) ([]model.StopVisit, error) {
	SelectQuery := `
		SELECT tsr.trip_id, tsr.stop_id, tsr.actual_drop_time, t.scheduled_start
		FROM trip_stop_records tsr
		JOIN trips t ON t.trip_id = tsr.trip_id
		WHERE tsr.stop_id = $1 AND tsr.actual_drop_time IS NOT NULL
		ORDER BY tsr.actual_drop_time DESC
		LIMIT $2;
	`
	rows, err := rr.db.GetConn().Query(ctx, SelectQuery, stopID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.StopVisit
	for rows.Next() {
		var visit model.StopVisit
		if err := rows.Scan(
			&visit.TripID,
			&visit.StopID,
			&visit.ActualTime,
			&visit.TripScheduled,
		); err != nil {
			return nil, err
		}
		results = append(results, visit)
	}
	return results, rows.Err()
}
