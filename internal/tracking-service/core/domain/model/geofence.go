package model

// Geofence is a named circular zone owned by a vehicle. Staff manage these
// elsewhere; the tracking core treats them as read-only.
type Geofence struct {
	ID           string
	VehicleID    string
	Name         string
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
	IsActive bool
	// Alert flags are carried for schema fidelity only; entry/exit alert
	// delivery is owned by the zone-management side, not the tracking core.
	AlertOnEnter bool
	AlertOnExit  bool
}
