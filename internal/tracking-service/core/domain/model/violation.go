package model

import "time"

type Severity string

const (
	SeverityWarning   Severity = "WARNING"
	SeverityViolation Severity = "VIOLATION"
	SeverityCritical  Severity = "CRITICAL"
)

// SpeedViolation is immutable once written. Created by the speed monitor,
// read back for analytics and cleanup.
type SpeedViolation struct {
	ID            string
	VehicleID     string
	DriverID      *string
	SpeedKmh      float64
	SpeedLimitKmh float64
	Latitude      float64
	Longitude     float64
	Severity      Severity
	Timestamp     time.Time
}
