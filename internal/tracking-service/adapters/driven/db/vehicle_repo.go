package db

import (
	"context"
	"errors"

	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

type VehicleRepository struct {
	db *DataBase
}

func NewVehicleRepository(db *DataBase) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (vr *VehicleRepository) GetActive(ctx context.Context, vehicleID string) (model.Vehicle, error) {
	SelectQuery := `
		SELECT v.vehicle_id, v.org_id, v.plate_number, v.driver_id, COALESCE(d.full_name, ''), v.is_active
		FROM vehicles v
		LEFT JOIN drivers d ON d.driver_id = v.driver_id
		WHERE v.vehicle_id = $1 AND v.is_active = true;
	`
	var vehicle model.Vehicle
	err := vr.db.GetConn().QueryRow(ctx, SelectQuery, vehicleID).Scan(
		&vehicle.ID,
		&vehicle.OrgID,
		&vehicle.PlateNumber,
		&vehicle.DriverID,
		&vehicle.DriverName,
		&vehicle.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vehicle{}, myerrors.NotFound("vehicle %s not found or inactive", vehicleID)
		}
		return model.Vehicle{}, err
	}
	return vehicle, nil
}

func (vr *VehicleRepository) ListActive(ctx context.Context, orgID string) ([]model.Vehicle, error) {
	SelectQuery := `
		SELECT v.vehicle_id, v.org_id, v.plate_number, v.driver_id, COALESCE(d.full_name, ''), v.is_active
		FROM vehicles v
		LEFT JOIN drivers d ON d.driver_id = v.driver_id
		WHERE v.is_active = true AND ($1 = '' OR v.org_id = $1)
		ORDER BY v.vehicle_id;
	`
	rows, err := vr.db.GetConn().Query(ctx, SelectQuery, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Vehicle
	for rows.Next() {
		var vehicle model.Vehicle
		if err := rows.Scan(
			&vehicle.ID,
			&vehicle.OrgID,
			&vehicle.PlateNumber,
			&vehicle.DriverID,
			&vehicle.DriverName,
			&vehicle.IsActive,
		); err != nil {
			return nil, err
		}
		results = append(results, vehicle)
	}
	return results, rows.Err()
}

// ListParentIDs returns the parents of students assigned to the vehicle,
// for the per-parent location channel.
func (vr *VehicleRepository) ListParentIDs(ctx context.Context, vehicleID string) ([]string, error) {
	SelectQuery := `
		SELECT DISTINCT s.parent_id
		FROM students s
		WHERE s.vehicle_id = $1 AND s.parent_id IS NOT NULL;
	`
	rows, err := vr.db.GetConn().Query(ctx, SelectQuery, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var parentID string
		if err := rows.Scan(&parentID); err != nil {
			return nil, err
		}
		results = append(results, parentID)
	}
	return results, rows.Err()
}
