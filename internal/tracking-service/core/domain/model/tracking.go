package model

import "time"

// PositionReport is a single GPS sample. Rows are append-only; a persisted
// report is never mutated.
type PositionReport struct {
	ID        string
	VehicleID string
	Latitude  float64
	Longitude float64
	SpeedKmh  *float64
	Heading   *float64
	Accuracy  *float64
	Altitude  *float64
	TripID    *string
	IsValid   bool
	Timestamp time.Time
}

// CurrentLocation is the cache entry for a vehicle's latest report plus
// denormalized display data. Replaced on every new report, expires passively.
type CurrentLocation struct {
	VehicleID   string    `json:"vehicle_id"`
	PlateNumber string    `json:"plate_number"`
	DriverID    *string   `json:"driver_id,omitempty"`
	DriverName  string    `json:"driver_name,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SpeedKmh    *float64  `json:"speed_kmh,omitempty"`
	Heading     *float64  `json:"heading,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Vehicle is reference data owned by the fleet CRUD side; the tracking core
// only reads it.
type Vehicle struct {
	ID          string
	OrgID       string
	PlateNumber string
	DriverID    *string
	DriverName  string
	IsActive    bool
}

type HistoryQuery struct {
	VehicleID string
	Start     time.Time
	End       time.Time
	Page      int
	Limit     int
}
