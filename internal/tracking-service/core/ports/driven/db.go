package driven

import (
	"context"
	"time"

	"bus-fleet/internal/tracking-service/core/domain/model"
)

type ITrackingRepository interface {
	// Insert appends an immutable row to the tracking log and returns it
	// with the generated id.
	Insert(ctx context.Context, report model.PositionReport) (model.PositionReport, error)
	GetLatest(ctx context.Context, vehicleID string) (model.PositionReport, error)
	GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error)
	// GetRecentSpeeds returns up to limit non-null speed samples for the
	// vehicle since the given time, newest first.
	GetRecentSpeeds(ctx context.Context, vehicleID string, since time.Time, limit int) ([]float64, error)
	GetSpeedSamples(ctx context.Context, vehicleID string, start, end time.Time) ([]model.PositionReport, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type IViolationRepository interface {
	Insert(ctx context.Context, v model.SpeedViolation) (model.SpeedViolation, error)
	ListInWindow(ctx context.Context, vehicleID string, start, end time.Time) ([]model.SpeedViolation, error)
}

type IGeofenceRepository interface {
	// ListActive returns the vehicle's active zones in stored order.
	ListActive(ctx context.Context, vehicleID string) ([]model.Geofence, error)
}

type IRouteRepository interface {
	// GetActiveRoute returns the vehicle's active route with its stops
	// ordered by sequence. When more than one route is active the first by
	// route id wins.
	GetActiveRoute(ctx context.Context, vehicleID string) (model.Route, error)
	// GetRecentStopVisits returns up to limit historical trip records that
	// reference the stop, newest first.
	GetRecentStopVisits(ctx context.Context, stopID string, limit int) ([]model.StopVisit, error)
}

type IVehicleRepository interface {
	GetActive(ctx context.Context, vehicleID string) (model.Vehicle, error)
	ListActive(ctx context.Context, orgID string) ([]model.Vehicle, error)
	// ListParentIDs returns the ids of parents assigned to the vehicle's
	// students, for the per-parent location channel.
	ListParentIDs(ctx context.Context, vehicleID string) ([]string, error)
}
