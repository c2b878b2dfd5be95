package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"
	"bus-fleet/internal/tracking-service/core/ports/driven"
	portsdriver "bus-fleet/internal/tracking-service/core/ports/driver"
)

const (
	speedSampleLimit  = 50
	speedSampleWindow = 30 * time.Minute
	defaultSpeedKmh   = 30
	minEffectiveSpeed = 10
	delayedThresholdM = 5
	severeDelayM      = 15
)

// ETAService estimates arrival at the vehicle's next stop from its current
// position, recent average speed and a time-of-day traffic heuristic. It is
// stateless; every call recomputes from the log and cache.
type ETAService struct {
	reports  driven.ITrackingRepository
	routes   driven.IRouteRepository
	tracking portsdriver.ITrackingService
	log      mylogger.Logger
	now      func() time.Time
}

func NewETAService(
	reports driven.ITrackingRepository,
	routes driven.IRouteRepository,
	tracking portsdriver.ITrackingService,
	log mylogger.Logger,
) *ETAService {
	return &ETAService{
		reports:  reports,
		routes:   routes,
		tracking: tracking,
		log:      log,
		now:      time.Now,
	}
}

// CalculateETA targets the first stop in sequence order. Trip progress is
// not tracked: the first active stop is always the target, which matches
// the dashboard's contract. A route with zero stops yields a partial result
// with only the current location.
func (es *ETAService) CalculateETA(ctx context.Context, vehicleID string) (model.ETAResult, error) {
	loc, err := es.tracking.GetCurrent(ctx, vehicleID)
	if err != nil {
		return model.ETAResult{}, err
	}

	route, err := es.routes.GetActiveRoute(ctx, vehicleID)
	if err != nil {
		return model.ETAResult{}, err
	}

	result := model.ETAResult{
		VehicleID:       vehicleID,
		CurrentLocation: loc,
	}

	if len(route.Stops) == 0 {
		// Nothing to estimate; distinct from "no data available".
		return result, nil
	}

	target := route.Stops[0]
	distance := DistanceMeters(loc.Latitude, loc.Longitude, target.Latitude, target.Longitude)

	avgSpeed, err := es.averageRecentSpeed(ctx, vehicleID)
	if err != nil {
		return model.ETAResult{}, err
	}

	factor := trafficFactor(es.now().Hour())
	adjusted := avgSpeed / factor
	if adjusted < minEffectiveSpeed {
		adjusted = minEffectiveSpeed
	}

	distanceKm := distance / 1000
	durationMinutes := distanceKm / adjusted * 60
	arrival := es.now().Add(time.Duration(durationMinutes * float64(time.Minute)))

	roundedDistance := math.Round(distance)
	roundedDuration := round1(durationMinutes)
	roundedSpeed := round2(avgSpeed)
	roundedFactor := round2(factor)
	stopID := target.ID

	result.NextStopID = &stopID
	result.NextStopName = target.Name
	result.DistanceMeters = &roundedDistance
	result.DurationMinutes = &roundedDuration
	result.AverageSpeedKmh = &roundedSpeed
	result.TrafficFactor = &roundedFactor
	result.EstimatedArrival = &arrival
	return result, nil
}

// AnalyzeETA compares the estimate against the target stop's scheduled
// pickup time. The schedule is a bare clock time with no date: it is pinned
// to the estimate's date, so a cross-midnight trip produces a bogus delay.
// Returns nil when the stop carries no scheduled time.
func (es *ETAService) AnalyzeETA(ctx context.Context, vehicleID string) (*model.DelayAnalysis, error) {
	eta, err := es.CalculateETA(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if eta.NextStopID == nil || eta.EstimatedArrival == nil {
		return nil, nil
	}

	route, err := es.routes.GetActiveRoute(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	// The route is read twice in one request; match the stop by id so a
	// concurrent route/stop change degrades to "nothing to analyze" rather
	// than analyzing against the wrong stop.
	var target *model.RouteStop
	for i := range route.Stops {
		if route.Stops[i].ID == *eta.NextStopID {
			target = &route.Stops[i]
			break
		}
	}
	if target == nil || target.PickupTime == nil {
		return nil, nil
	}

	scheduled, err := clockTimeOn(*eta.EstimatedArrival, *target.PickupTime)
	if err != nil {
		return nil, myerrors.InvalidArgument("stop %s pickup time %q unparseable", target.ID, *target.PickupTime)
	}

	delay := eta.EstimatedArrival.Sub(scheduled).Minutes()
	analysis := &model.DelayAnalysis{
		VehicleID:        vehicleID,
		NextStopID:       *eta.NextStopID,
		ScheduledPickup:  scheduled,
		EstimatedArrival: *eta.EstimatedArrival,
		DelayMinutes:     round1(delay),
		IsDelayed:        delay > delayedThresholdM,
	}

	if analysis.IsDelayed {
		analysis.Recommendations = append(analysis.Recommendations,
			"Consider rerouting around congestion ahead",
			"Notify parents on this route about the delay",
		)
		if delay > severeDelayM {
			analysis.Recommendations = append(analysis.Recommendations,
				"Consider skipping non-essential stops to recover schedule",
			)
		}
	}
	return analysis, nil
}

// averageRecentSpeed is the mean of up to the last 50 non-null samples in
// the trailing 30 minutes. No samples at all falls back to 30 km/h.
func (es *ETAService) averageRecentSpeed(ctx context.Context, vehicleID string) (float64, error) {
	since := es.now().Add(-speedSampleWindow)
	speeds, err := es.reports.GetRecentSpeeds(ctx, vehicleID, since, speedSampleLimit)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return defaultSpeedKmh, nil
		}
		return 0, fmt.Errorf("recent speeds: %w", err)
	}
	if len(speeds) == 0 {
		return defaultSpeedKmh, nil
	}
	sum := 0.0
	for _, s := range speeds {
		sum += s
	}
	return sum / float64(len(speeds)), nil
}

// trafficFactor slows the average speed down during school-run peaks.
func trafficFactor(hour int) float64 {
	switch {
	case (hour >= 7 && hour < 9) || (hour >= 16 && hour < 18):
		return 1.3
	case hour >= 11 && hour < 13:
		return 1.1
	default:
		return 1.0
	}
}

// clockTimeOn pins an "HH:MM" clock string onto the given date.
func clockTimeOn(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		// some feeds carry seconds
		parsed, err = time.Parse("15:04:05", clock)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, date.Location()), nil
}
