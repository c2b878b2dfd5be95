package driven

import (
	"context"

	"bus-fleet/internal/tracking-service/core/domain/model"
)

// ILocationCache is the fast-path store of each vehicle's latest position.
// It is a soft dependency: SetCurrent must never fail the caller and
// GetCurrent reports an outage as a plain miss.
type ILocationCache interface {
	SetCurrent(ctx context.Context, loc model.CurrentLocation)
	GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, bool)
}
