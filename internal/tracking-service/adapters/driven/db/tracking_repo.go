package db

import (
	"context"
	"errors"
	"time"

	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

type TrackingRepository struct {
	db *DataBase
}

func NewTrackingRepository(db *DataBase) *TrackingRepository {
	return &TrackingRepository{db: db}
}

func (tr *TrackingRepository) Insert(ctx context.Context, report model.PositionReport) (model.PositionReport, error) {
	InsertQuery := `
		INSERT INTO tracking_reports(vehicle_id, latitude, longitude, speed_kmh, heading, accuracy, altitude, trip_id, is_valid, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING report_id;
	`
	err := tr.db.GetConn().QueryRow(ctx, InsertQuery,
		report.VehicleID,
		report.Latitude,
		report.Longitude,
		report.SpeedKmh,
		report.Heading,
		report.Accuracy,
		report.Altitude,
		report.TripID,
		report.IsValid,
		report.Timestamp,
	).Scan(&report.ID)
	if err != nil {
		return model.PositionReport{}, err
	}
	return report, nil
}

func (tr *TrackingRepository) GetLatest(ctx context.Context, vehicleID string) (model.PositionReport, error) {
	SelectQuery := `
		SELECT report_id, vehicle_id, latitude, longitude, speed_kmh, heading, accuracy, altitude, trip_id, is_valid, recorded_at
		FROM tracking_reports
		WHERE vehicle_id = $1 AND is_valid = true
		ORDER BY recorded_at DESC
		LIMIT 1;
	`
	var report model.PositionReport
	err := tr.db.GetConn().QueryRow(ctx, SelectQuery, vehicleID).Scan(
		&report.ID,
		&report.VehicleID,
		&report.Latitude,
		&report.Longitude,
		&report.SpeedKmh,
		&report.Heading,
		&report.Accuracy,
		&report.Altitude,
		&report.TripID,
		&report.IsValid,
		&report.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PositionReport{}, myerrors.NotFound("no location data for vehicle %s", vehicleID)
		}
		return model.PositionReport{}, err
	}
	return report, nil
}

func (tr *TrackingRepository) GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error) {
	SelectQuery := `
		SELECT report_id, vehicle_id, latitude, longitude, speed_kmh, heading, accuracy, altitude, trip_id, is_valid, recorded_at
		FROM tracking_reports
		WHERE vehicle_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at DESC
		LIMIT $4 OFFSET $5;
	`
	offset := (q.Page - 1) * q.Limit
	rows, err := tr.db.GetConn().Query(ctx, SelectQuery, q.VehicleID, q.Start, q.End, q.Limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PositionReport
	for rows.Next() {
		var report model.PositionReport
		if err := rows.Scan(
			&report.ID,
			&report.VehicleID,
			&report.Latitude,
			&report.Longitude,
			&report.SpeedKmh,
			&report.Heading,
			&report.Accuracy,
			&report.Altitude,
			&report.TripID,
			&report.IsValid,
			&report.Timestamp,
		); err != nil {
			return nil, err
		}
		results = append(results, report)
	}
	return results, rows.Err()
}

func (tr *TrackingRepository) GetRecentSpeeds(ctx context.Context, vehicleID string, since time.Time, limit int) ([]float64, error) {
	SelectQuery := `
		SELECT speed_kmh
		FROM tracking_reports
		WHERE vehicle_id = $1 AND is_valid = true AND speed_kmh IS NOT NULL AND recorded_at >= $2
		ORDER BY recorded_at DESC
		LIMIT $3;
	`
	rows, err := tr.db.GetConn().Query(ctx, SelectQuery, vehicleID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var speeds []float64
	for rows.Next() {
		var speed float64
		if err := rows.Scan(&speed); err != nil {
			return nil, err
		}
		speeds = append(speeds, speed)
	}
	return speeds, rows.Err()
}

func (tr *TrackingRepository) GetSpeedSamples(ctx context.Context, vehicleID string, start, end time.Time) ([]model.PositionReport, error) {
	SelectQuery := `
		SELECT report_id, vehicle_id, latitude, longitude, speed_kmh, heading, accuracy, altitude, trip_id, is_valid, recorded_at
		FROM tracking_reports
		WHERE vehicle_id = $1 AND is_valid = true AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC;
	`
	rows, err := tr.db.GetConn().Query(ctx, SelectQuery, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PositionReport
	for rows.Next() {
		var report model.PositionReport
		if err := rows.Scan(
			&report.ID,
			&report.VehicleID,
			&report.Latitude,
			&report.Longitude,
			&report.SpeedKmh,
			&report.Heading,
			&report.Accuracy,
			&report.Altitude,
			&report.TripID,
			&report.IsValid,
			&report.Timestamp,
		); err != nil {
			return nil, err
		}
		results = append(results, report)
	}
	return results, rows.Err()
}

func (tr *TrackingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	DeleteQuery := `
		DELETE FROM tracking_reports
		WHERE recorded_at < $1;
	`
	tag, err := tr.db.GetConn().Exec(ctx, DeleteQuery, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
