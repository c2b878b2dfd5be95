package db

import (
	"context"
	"time"

	"bus-fleet/internal/tracking-service/core/domain/model"
)

type ViolationRepository struct {
	db *DataBase
}

func NewViolationRepository(db *DataBase) *ViolationRepository {
	return &ViolationRepository{db: db}
}

func (vr *ViolationRepository) Insert(ctx context.Context, v model.SpeedViolation) (model.SpeedViolation, error) {
	InsertQuery := `
		INSERT INTO speed_violations(vehicle_id, driver_id, speed_kmh, speed_limit_kmh, latitude, longitude, severity, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING violation_id;
	`
	err := vr.db.GetConn().QueryRow(ctx, InsertQuery,
		v.VehicleID,
		v.DriverID,
		v.SpeedKmh,
		v.SpeedLimitKmh,
		v.Latitude,
		v.Longitude,
		string(v.Severity),
		v.Timestamp,
	).Scan(&v.ID)
	if err != nil {
		return model.SpeedViolation{}, err
	}
	return v, nil
}

func (vr *ViolationRepository) ListInWindow(ctx context.Context, vehicleID string, start, end time.Time) ([]model.SpeedViolation, error) {
	SelectQuery := `
		SELECT violation_id, vehicle_id, driver_id, speed_kmh, speed_limit_kmh, latitude, longitude, severity, recorded_at
		FROM speed_violations
		WHERE vehicle_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at DESC;
	`
	rows, err := vr.db.GetConn().Query(ctx, SelectQuery, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SpeedViolation
	for rows.Next() {
		var v model.SpeedViolation
		var severity string
		if err := rows.Scan(
			&v.ID,
			&v.VehicleID,
			&v.DriverID,
			&v.SpeedKmh,
			&v.SpeedLimitKmh,
			&v.Latitude,
			&v.Longitude,
			&severity,
			&v.Timestamp,
		); err != nil {
			return nil, err
		}
		v.Severity = model.Severity(severity)
		results = append(results, v)
	}
	return results, rows.Err()
}
