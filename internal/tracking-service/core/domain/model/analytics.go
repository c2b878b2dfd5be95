package model

import "time"

// SpeedAnalyticsSummary is a computed view over reports and violations in a
// time window. Never persisted, recomputed per request.
type SpeedAnalyticsSummary struct {
	VehicleID       string
	Start           time.Time
	End             time.Time
	SampleCount     int
	AverageSpeedKmh float64
	MaxSpeedKmh     float64
	MinSpeedKmh     float64
	TotalDistanceKm float64
	SpeedViolations int
	Violations      []SpeedViolation
}

type FleetSpeedStats struct {
	OrgID              string
	VehicleCount       int
	FleetAvgSpeedKmh   float64
	TotalViolations    int
	CriticalViolations int
	TopViolatorID      string
	TopViolatorCount   int
	PerVehicle         []SpeedAnalyticsSummary
}
