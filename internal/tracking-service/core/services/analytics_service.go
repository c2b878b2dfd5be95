package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/ports/driven"
	portsdriver "bus-fleet/internal/tracking-service/core/ports/driver"
)

const (
	defaultAnalyticsWindow = 24 * time.Hour
	predictionTripLimit    = 20
	fallbackConfidence     = 0.3
)

// AnalyticsService computes summaries over the tracking and violation logs.
// Nothing here is persisted; every call recomputes from scratch.
type AnalyticsService struct {
	reports    driven.ITrackingRepository
	violations driven.IViolationRepository
	vehicles   driven.IVehicleRepository
	routes     driven.IRouteRepository
	eta        portsdriver.IETAService
	// scheduledArrivalOffset approximates a stop's scheduled arrival as the
	// trip's scheduled start plus this offset.
	scheduledArrivalOffset time.Duration
	log                    mylogger.Logger
	now                    func() time.Time
}

func NewAnalyticsService(
	reports driven.ITrackingRepository,
	violations driven.IViolationRepository,
	vehicles driven.IVehicleRepository,
	routes driven.IRouteRepository,
	eta portsdriver.IETAService,
	scheduledArrivalOffset time.Duration,
	log mylogger.Logger,
) *AnalyticsService {
	if scheduledArrivalOffset <= 0 {
		scheduledArrivalOffset = 2 * time.Hour
	}
	return &AnalyticsService{
		reports:                reports,
		violations:             violations,
		vehicles:               vehicles,
		routes:                 routes,
		eta:                    eta,
		scheduledArrivalOffset: scheduledArrivalOffset,
		log:                    log,
		now:                    time.Now,
	}
}

// GetSpeedAnalytics summarizes valid speed samples in [start, end],
// defaulting to the trailing 24 hours. An empty window yields a zeroed
// summary, never an error.
func (as *AnalyticsService) GetSpeedAnalytics(ctx context.Context, vehicleID string, start, end *time.Time) (model.SpeedAnalyticsSummary, error) {
	windowEnd := as.now().UTC()
	if end != nil {
		windowEnd = end.UTC()
	}
	windowStart := windowEnd.Add(-defaultAnalyticsWindow)
	if start != nil {
		windowStart = start.UTC()
	}

	summary := model.SpeedAnalyticsSummary{
		VehicleID:  vehicleID,
		Start:      windowStart,
		End:        windowEnd,
		Violations: []model.SpeedViolation{},
	}

	samples, err := as.reports.GetSpeedSamples(ctx, vehicleID, windowStart, windowEnd)
	if err != nil {
		return model.SpeedAnalyticsSummary{}, fmt.Errorf("speed samples: %w", err)
	}

	violations, err := as.violations.ListInWindow(ctx, vehicleID, windowStart, windowEnd)
	if err != nil {
		return model.SpeedAnalyticsSummary{}, fmt.Errorf("violations in window: %w", err)
	}
	if violations != nil {
		summary.Violations = violations
	}
	summary.SpeedViolations = len(summary.Violations)

	speeds := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.SpeedKmh != nil {
			speeds = append(speeds, *s.SpeedKmh)
		}
	}
	summary.SampleCount = len(speeds)
	if len(speeds) == 0 {
		return summary, nil
	}

	sum, maxS, minS := 0.0, speeds[0], speeds[0]
	for _, s := range speeds {
		sum += s
		if s > maxS {
			maxS = s
		}
		if s < minS {
			minS = s
		}
	}
	summary.AverageSpeedKmh = round1(sum / float64(len(speeds)))
	summary.MaxSpeedKmh = round1(maxS)
	summary.MinSpeedKmh = round1(minS)
	summary.TotalDistanceKm = round1(trapezoidalDistanceKm(samples))
	return summary, nil
}

// trapezoidalDistanceKm approximates distance travelled by integrating
// speed over time between consecutive samples. Pairs with a missing speed
// on either side are skipped.
func trapezoidalDistanceKm(samples []model.PositionReport) float64 {
	total := 0.0
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.SpeedKmh == nil || cur.SpeedKmh == nil {
			continue
		}
		dtHours := cur.Timestamp.Sub(prev.Timestamp).Hours()
		if dtHours <= 0 {
			continue
		}
		total += (*prev.SpeedKmh + *cur.SpeedKmh) / 2 * dtHours
	}
	return total
}

// GetFleetSpeedStats aggregates per-vehicle summaries over every active
// vehicle, optionally scoped to one organization. The fleet average is a
// simple mean of per-vehicle means, not weighted by sample count; vehicles
// with no samples in the window are excluded from the average so idle buses
// do not drag it toward zero.
func (as *AnalyticsService) GetFleetSpeedStats(ctx context.Context, orgID string) (model.FleetSpeedStats, error) {
	vehicles, err := as.vehicles.ListActive(ctx, orgID)
	if err != nil {
		return model.FleetSpeedStats{}, fmt.Errorf("list vehicles: %w", err)
	}

	stats := model.FleetSpeedStats{OrgID: orgID}
	if len(vehicles) == 0 {
		return stats, nil
	}

	meanSum := 0.0
	meansCounted := 0
	for _, vehicle := range vehicles {
		summary, err := as.GetSpeedAnalytics(ctx, vehicle.ID, nil, nil)
		if err != nil {
			return model.FleetSpeedStats{}, err
		}
		stats.PerVehicle = append(stats.PerVehicle, summary)
		stats.VehicleCount++
		stats.TotalViolations += summary.SpeedViolations
		for _, v := range summary.Violations {
			if v.Severity == model.SeverityCritical {
				stats.CriticalViolations++
			}
		}
		if summary.SampleCount > 0 {
			meanSum += summary.AverageSpeedKmh
			meansCounted++
		}
		if summary.SpeedViolations > stats.TopViolatorCount {
			stats.TopViolatorCount = summary.SpeedViolations
			stats.TopViolatorID = vehicle.ID
		}
	}
	if meansCounted > 0 {
		stats.FleetAvgSpeedKmh = round1(meanSum / float64(meansCounted))
	}
	return stats, nil
}

// PredictETA adjusts a fresh ETA by the mean historical delay at the target
// stop, derived from the most recent 20 trips that touched it. Confidence
// shrinks with the spread of those delays.
func (as *AnalyticsService) PredictETA(ctx context.Context, vehicleID, targetStopID string) (model.ETAPrediction, error) {
	eta, err := as.eta.CalculateETA(ctx, vehicleID)
	if err != nil {
		return model.ETAPrediction{}, err
	}
	if eta.EstimatedArrival == nil {
		return model.ETAPrediction{}, fmt.Errorf("vehicle %s has no route stop to predict against", vehicleID)
	}

	visits, err := as.routes.GetRecentStopVisits(ctx, targetStopID, predictionTripLimit)
	if err != nil {
		return model.ETAPrediction{}, fmt.Errorf("stop visit history: %w", err)
	}

	prediction := model.ETAPrediction{
		VehicleID: vehicleID,
		StopID:    targetStopID,
	}

	if len(visits) == 0 {
		prediction.PredictedArrival = *eta.EstimatedArrival
		prediction.Confidence = fallbackConfidence
		return prediction, nil
	}

	delays := make([]float64, 0, len(visits))
	for _, visit := range visits {
		scheduledArrival := visit.TripScheduled.Add(as.scheduledArrivalOffset)
		delays = append(delays, visit.ActualTime.Sub(scheduledArrival).Minutes())
	}

	mean := 0.0
	for _, d := range delays {
		mean += d
	}
	mean /= float64(len(delays))

	variance := 0.0
	for _, d := range delays {
		variance += (d - mean) * (d - mean)
	}
	stddev := math.Sqrt(variance / float64(len(delays)))

	confidence := 1 - stddev/30
	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 0.9 {
		confidence = 0.9
	}

	prediction.PredictedArrival = eta.EstimatedArrival.Add(time.Duration(mean * float64(time.Minute)))
	prediction.AvgDelayMinutes = round1(mean)
	prediction.Confidence = round2(confidence)
	prediction.BasedOnTrips = len(visits)
	return prediction, nil
}
