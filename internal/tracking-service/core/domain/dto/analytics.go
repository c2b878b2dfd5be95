package dto

import "time"

type SpeedViolationDTO struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicle_id"`
	SpeedKmh      float64   `json:"speed_kmh"`
	SpeedLimitKmh float64   `json:"speed_limit_kmh"`
	Severity      string    `json:"severity"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Timestamp     time.Time `json:"timestamp"`
}

type SpeedAnalyticsResponse struct {
	VehicleID       string              `json:"vehicle_id"`
	Start           time.Time           `json:"start"`
	End             time.Time           `json:"end"`
	SampleCount     int                 `json:"sample_count"`
	AverageSpeedKmh float64             `json:"average_speed_kmh"`
	MaxSpeedKmh     float64             `json:"max_speed_kmh"`
	MinSpeedKmh     float64             `json:"min_speed_kmh"`
	TotalDistanceKm float64             `json:"total_distance_km"`
	SpeedViolations int                 `json:"speed_violations"`
	Violations      []SpeedViolationDTO `json:"violations"`
}

type FleetSpeedStatsResponse struct {
	OrgID              string  `json:"org_id,omitempty"`
	VehicleCount       int     `json:"vehicle_count"`
	FleetAvgSpeedKmh   float64 `json:"fleet_avg_speed_kmh"`
	TotalViolations    int     `json:"total_violations"`
	CriticalViolations int     `json:"critical_violations"`
	TopViolatorID      string  `json:"top_violator_id,omitempty"`
	TopViolatorCount   int     `json:"top_violator_count"`
}

type GeofenceStatusResponse struct {
	VehicleID      string   `json:"vehicle_id"`
	Inside         bool     `json:"inside"`
	ZoneID         *string  `json:"zone_id,omitempty"`
	ZoneName       string   `json:"zone_name,omitempty"`
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

type ETAResponse struct {
	VehicleID        string                  `json:"vehicle_id"`
	CurrentLocation  CurrentLocationResponse `json:"current_location"`
	NextStopID       *string                 `json:"next_stop_id,omitempty"`
	NextStopName     string                  `json:"next_stop_name,omitempty"`
	DistanceMeters   *float64                `json:"distance_meters,omitempty"`
	DurationMinutes  *float64                `json:"duration_minutes,omitempty"`
	AverageSpeedKmh  *float64                `json:"average_speed_kmh,omitempty"`
	TrafficFactor    *float64                `json:"traffic_factor,omitempty"`
	EstimatedArrival *time.Time              `json:"estimated_arrival,omitempty"`
}

type DelayAnalysisResponse struct {
	VehicleID        string    `json:"vehicle_id"`
	NextStopID       string    `json:"next_stop_id"`
	ScheduledPickup  time.Time `json:"scheduled_pickup"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	DelayMinutes     float64   `json:"delay_minutes"`
	IsDelayed        bool      `json:"is_delayed"`
	Recommendations  []string  `json:"recommendations"`
}

type ETAPredictionResponse struct {
	VehicleID        string    `json:"vehicle_id"`
	StopID           string    `json:"stop_id"`
	PredictedArrival time.Time `json:"predicted_arrival"`
	AvgDelayMinutes  float64   `json:"avg_delay_minutes"`
	Confidence       float64   `json:"confidence"`
	BasedOnTrips     int       `json:"based_on_trips"`
}
