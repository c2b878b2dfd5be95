package model

import "time"

// Route and RouteStop are externally owned reference data. Stops are ordered
// by Sequence; the core reads them for ETA only.
type Route struct {
	ID        string
	VehicleID string
	Name      string
	IsActive  bool
	Stops     []RouteStop
}

type RouteStop struct {
	ID        string
	RouteID   string
	Name      string
	Latitude  float64
	Longitude float64
	Sequence  int
	// PickupTime is a clock time ("HH:MM"), no date context.
	PickupTime *string
	DropTime   *string
}

// StopVisit is one historical trip record touching a stop, used by the
// delay predictor.
type StopVisit struct {
	TripID        string
	StopID        string
	ActualTime    time.Time
	TripScheduled time.Time
}
