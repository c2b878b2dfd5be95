package model

import "time"

// ETAResult carries the full estimate, or only CurrentLocation when the
// active route has no stops (nothing to estimate, which is not an error).
type ETAResult struct {
	VehicleID        string
	CurrentLocation  CurrentLocation
	NextStopID       *string
	NextStopName     string
	DistanceMeters   *float64
	DurationMinutes  *float64
	AverageSpeedKmh  *float64
	TrafficFactor    *float64
	EstimatedArrival *time.Time
}

type DelayAnalysis struct {
	VehicleID        string
	NextStopID       string
	ScheduledPickup  time.Time
	EstimatedArrival time.Time
	DelayMinutes     float64
	IsDelayed        bool
	Recommendations  []string
}

type ETAPrediction struct {
	VehicleID        string
	StopID           string
	PredictedArrival time.Time
	AvgDelayMinutes  float64
	Confidence       float64
	BasedOnTrips     int
}
