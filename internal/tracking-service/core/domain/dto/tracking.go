package dto

import "time"

// PositionReportRequest is the ingest payload, shared by POST /tracking and
// the MQTT subscriber.
type PositionReportRequest struct {
	VehicleID string     `json:"vehicle_id" validate:"required"`
	Latitude  float64    `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64    `json:"longitude" validate:"gte=-180,lte=180"`
	SpeedKmh  *float64   `json:"speed_kmh,omitempty" validate:"omitempty,gte=0"`
	Heading   *float64   `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	TripID    *string    `json:"trip_id,omitempty"`
}

type PositionReportResponse struct {
	ID        string    `json:"id"`
	VehicleID string    `json:"vehicle_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	SpeedKmh  *float64  `json:"speed_kmh,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type BulkRecordRequest struct {
	Reports []PositionReportRequest `json:"reports" validate:"required,min=1"`
}

type BulkItemResult struct {
	Index  int                     `json:"index"`
	Status string                  `json:"status"`
	Report *PositionReportResponse `json:"report,omitempty"`
	Error  string                  `json:"error,omitempty"`
}

type BulkRecordResponse struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

type CurrentLocationResponse struct {
	VehicleID   string    `json:"vehicle_id"`
	PlateNumber string    `json:"plate_number"`
	DriverName  string    `json:"driver_name,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SpeedKmh    *float64  `json:"speed_kmh,omitempty"`
	Heading     *float64  `json:"heading,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	VehicleID string                   `json:"vehicle_id"`
	Page      int                      `json:"page"`
	Limit     int                      `json:"limit"`
	Reports   []PositionReportResponse `json:"reports"`
}

type CleanupResponse struct {
	DaysKept     int   `json:"days_kept"`
	DeletedCount int64 `json:"deleted_count"`
}
