package services

import (
	"context"
	"fmt"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/observability"
	"bus-fleet/internal/tracking-service/core/domain/events"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/ports/driven"
)

// SpeedThresholds are school-zone defaults, injected at construction rather
// than held as package globals.
type SpeedThresholds struct {
	LimitKmh     float64
	WarningKmh   float64
	ViolationKmh float64
	CriticalKmh  float64
}

func DefaultSpeedThresholds() SpeedThresholds {
	return SpeedThresholds{
		LimitKmh:     50,
		WarningKmh:   55,
		ViolationKmh: 65,
		CriticalKmh:  80,
	}
}

// SpeedService is a stateless per-sample classifier. It keeps no memory of
// prior samples, so a vehicle oscillating around a threshold re-alerts on
// every sample that clears it.
type SpeedService struct {
	thresholds SpeedThresholds
	violations driven.IViolationRepository
	publisher  driven.IEventPublisher
	log        mylogger.Logger
}

func NewSpeedService(
	thresholds SpeedThresholds,
	violations driven.IViolationRepository,
	publisher driven.IEventPublisher,
	log mylogger.Logger,
) *SpeedService {
	return &SpeedService{
		thresholds: thresholds,
		violations: violations,
		publisher:  publisher,
		log:        log,
	}
}

// Classify walks the tiers from lowest to highest and keeps the last one the
// speed clears. Below the warning threshold there is no violation.
func (ss *SpeedService) Classify(speedKmh float64) (model.Severity, bool) {
	var severity model.Severity
	matched := false
	if speedKmh >= ss.thresholds.WarningKmh {
		severity = model.SeverityWarning
		matched = true
	}
	if speedKmh >= ss.thresholds.ViolationKmh {
		severity = model.SeverityViolation
	}
	if speedKmh >= ss.thresholds.CriticalKmh {
		severity = model.SeverityCritical
	}
	return severity, matched
}

// Monitor classifies one sample and, on a violation, persists it and pushes
// alerts to the org channel, the global ops channel and the assigned driver.
// Publish failures never fail the persisted violation.
func (ss *SpeedService) Monitor(ctx context.Context, vehicle model.Vehicle, speedKmh float64, lat, lon float64, at time.Time) (*model.SpeedViolation, error) {
	severity, matched := ss.Classify(speedKmh)
	if !matched {
		return nil, nil
	}

	violation := model.SpeedViolation{
		VehicleID:     vehicle.ID,
		DriverID:      vehicle.DriverID,
		SpeedKmh:      speedKmh,
		SpeedLimitKmh: ss.thresholds.LimitKmh,
		Latitude:      lat,
		Longitude:     lon,
		Severity:      severity,
		Timestamp:     at,
	}

	persisted, err := ss.violations.Insert(ctx, violation)
	if err != nil {
		return nil, fmt.Errorf("persist speed violation: %w", err)
	}
	observability.SpeedViolations.WithLabelValues(string(severity)).Inc()

	ss.notify(ctx, vehicle, persisted)
	return &persisted, nil
}

func (ss *SpeedService) notify(ctx context.Context, vehicle model.Vehicle, v model.SpeedViolation) {
	log := ss.log.Action("speed_notify").With("vehicle_id", vehicle.ID, "severity", string(v.Severity))

	payload := events.SpeedViolation{
		VehicleID:     v.VehicleID,
		DriverID:      v.DriverID,
		SpeedKmh:      v.SpeedKmh,
		SpeedLimitKmh: v.SpeedLimitKmh,
		Severity:      string(v.Severity),
		Latitude:      v.Latitude,
		Longitude:     v.Longitude,
		Timestamp:     v.Timestamp,
	}

	for _, channel := range []string{events.OrgChannel(vehicle.OrgID), events.OpsChannel} {
		if err := ss.publisher.Publish(ctx, channel, events.TypeSpeedViolation, payload); err != nil {
			observability.PublishErrors.Inc()
			log.Warn("violation publish failed", "channel", channel, "err", err.Error())
		}
	}

	if vehicle.DriverID != nil {
		alert := events.SpeedAlert{
			VehicleID:     v.VehicleID,
			SpeedKmh:      v.SpeedKmh,
			SpeedLimitKmh: v.SpeedLimitKmh,
			Severity:      string(v.Severity),
			Message:       fmt.Sprintf("Speed %.0f km/h exceeds the %.0f km/h limit", v.SpeedKmh, v.SpeedLimitKmh),
		}
		if err := ss.publisher.Publish(ctx, events.DriverChannel(*vehicle.DriverID), events.TypeSpeedAlert, alert); err != nil {
			observability.PublishErrors.Inc()
			log.Warn("driver alert publish failed", "err", err.Error())
		}
	}
}
