package events

import (
	"encoding/json"
	"time"
)

// Event types carried over the realtime channel.
const (
	TypeBusLocation    = "bus_location"
	TypeSpeedViolation = "speed_violation"
	TypeSpeedAlert     = "speed_alert"
)

// Audience routing keys on the fleet_topic exchange. The notifier binds
// queues on these patterns and fans deliveries into websocket rooms.
const (
	OpsChannel = "ops.global"
)

func ParentChannel(parentID string) string { return "parent." + parentID }
func OrgChannel(orgID string) string       { return "org." + orgID }
func DriverChannel(driverID string) string { return "driver." + driverID }

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type BusLocation struct {
	VehicleID   string    `json:"vehicle_id"`
	PlateNumber string    `json:"plate_number"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	SpeedKmh    *float64  `json:"speed_kmh,omitempty"`
	Heading     *float64  `json:"heading,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type SpeedViolation struct {
	VehicleID     string    `json:"vehicle_id"`
	DriverID      *string   `json:"driver_id,omitempty"`
	SpeedKmh      float64   `json:"speed_kmh"`
	SpeedLimitKmh float64   `json:"speed_limit_kmh"`
	Severity      string    `json:"severity"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Timestamp     time.Time `json:"timestamp"`
}

// SpeedAlert is the direct driver-facing variant of SpeedViolation.
type SpeedAlert struct {
	VehicleID     string  `json:"vehicle_id"`
	SpeedKmh      float64 `json:"speed_kmh"`
	SpeedLimitKmh float64 `json:"speed_limit_kmh"`
	Severity      string  `json:"severity"`
	Message       string  `json:"message"`
}
