package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/observability"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/events"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"
	"bus-fleet/internal/tracking-service/core/ports/driven"
	portsdriver "bus-fleet/internal/tracking-service/core/ports/driver"
)

const defaultCleanupDays = 90

// TrackingService owns the ingest path. The durable log is the source of
// truth; cache writes and event publishes are best-effort and never roll
// back a persisted report.
type TrackingService struct {
	reports   driven.ITrackingRepository
	vehicles  driven.IVehicleRepository
	cache     driven.ILocationCache
	publisher driven.IEventPublisher
	speed     portsdriver.ISpeedService
	log       mylogger.Logger
	now       func() time.Time
}

func NewTrackingService(
	reports driven.ITrackingRepository,
	vehicles driven.IVehicleRepository,
	cache driven.ILocationCache,
	publisher driven.IEventPublisher,
	speed portsdriver.ISpeedService,
	log mylogger.Logger,
) *TrackingService {
	return &TrackingService{
		reports:   reports,
		vehicles:  vehicles,
		cache:     cache,
		publisher: publisher,
		speed:     speed,
		log:       log,
		now:       time.Now,
	}
}

// Record validates and persists one position report, then runs the
// best-effort side effects: cache update, speed check, location fanout.
func (ts *TrackingService) Record(ctx context.Context, req dto.PositionReportRequest) (model.PositionReport, error) {
	start := time.Now()
	defer observability.ObserveIngestLatency(start)

	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		observability.ReportsRejected.Inc()
		return model.PositionReport{}, err
	}

	vehicle, err := ts.vehicles.GetActive(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			observability.ReportsRejected.Inc()
			return model.PositionReport{}, err
		}
		return model.PositionReport{}, fmt.Errorf("lookup vehicle %s: %w", req.VehicleID, err)
	}

	timestamp := ts.now().UTC()
	if req.Timestamp != nil {
		timestamp = req.Timestamp.UTC()
	}

	report := model.PositionReport{
		VehicleID: vehicle.ID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		SpeedKmh:  req.SpeedKmh,
		Heading:   req.Heading,
		Accuracy:  req.Accuracy,
		Altitude:  req.Altitude,
		TripID:    req.TripID,
		IsValid:   true,
		Timestamp: timestamp,
	}

	persisted, err := ts.reports.Insert(ctx, report)
	if err != nil {
		return model.PositionReport{}, fmt.Errorf("persist report: %w", err)
	}
	observability.ReportsIngested.Inc()

	ts.updateCache(ctx, vehicle, persisted)

	if persisted.SpeedKmh != nil {
		if _, err := ts.speed.Monitor(ctx, vehicle, *persisted.SpeedKmh, persisted.Latitude, persisted.Longitude, persisted.Timestamp); err != nil {
			ts.log.Action("record").Warn("speed monitor failed", "vehicle_id", vehicle.ID, "err", err.Error())
		}
	}

	ts.publishLocation(ctx, vehicle, persisted)

	return persisted, nil
}

// BulkRecord applies Record per item. One bad report does not abort the
// batch; callers get a per-item result slice.
func (ts *TrackingService) BulkRecord(ctx context.Context, reqs []dto.PositionReportRequest) []dto.BulkItemResult {
	results := make([]dto.BulkItemResult, 0, len(reqs))
	for i, req := range reqs {
		persisted, err := ts.Record(ctx, req)
		if err != nil {
			results = append(results, dto.BulkItemResult{
				Index:  i,
				Status: "failed",
				Error:  err.Error(),
			})
			continue
		}
		resp := toReportResponse(persisted)
		results = append(results, dto.BulkItemResult{
			Index:  i,
			Status: "ok",
			Report: &resp,
		})
	}
	return results
}

// GetCurrent serves from the cache when fresh, falling back to the durable
// log (and repopulating the cache) on a miss. A vehicle with no reports at
// all is NotFound.
func (ts *TrackingService) GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, error) {
	if loc, ok := ts.cache.GetCurrent(ctx, vehicleID); ok {
		return loc, nil
	}

	latest, err := ts.reports.GetLatest(ctx, vehicleID)
	if err != nil {
		return model.CurrentLocation{}, err
	}

	vehicle, err := ts.vehicles.GetActive(ctx, vehicleID)
	if err != nil {
		return model.CurrentLocation{}, err
	}

	loc := toCurrentLocation(vehicle, latest)
	ts.cache.SetCurrent(ctx, loc)
	return loc, nil
}

func (ts *TrackingService) GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.End.IsZero() {
		q.End = ts.now().UTC()
	}
	if q.Start.IsZero() {
		q.Start = q.End.Add(-24 * time.Hour)
	}
	return ts.reports.GetHistory(ctx, q)
}

// Cleanup purges log rows older than daysToKeep days. Operator-triggered,
// never run on an internal timer.
func (ts *TrackingService) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		daysToKeep = defaultCleanupDays
	}
	cutoff := ts.now().UTC().AddDate(0, 0, -daysToKeep)
	deleted, err := ts.reports.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup tracking log: %w", err)
	}
	ts.log.Action("cleanup").Info("tracking log purged", "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

func (ts *TrackingService) updateCache(ctx context.Context, vehicle model.Vehicle, report model.PositionReport) {
	ts.cache.SetCurrent(ctx, toCurrentLocation(vehicle, report))
}

func (ts *TrackingService) publishLocation(ctx context.Context, vehicle model.Vehicle, report model.PositionReport) {
	log := ts.log.Action("publish_location").With("vehicle_id", vehicle.ID)

	payload := events.BusLocation{
		VehicleID:   vehicle.ID,
		PlateNumber: vehicle.PlateNumber,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
		SpeedKmh:    report.SpeedKmh,
		Heading:     report.Heading,
		Timestamp:   report.Timestamp,
	}

	channels := []string{events.OrgChannel(vehicle.OrgID), events.OpsChannel}

	parents, err := ts.vehicles.ListParentIDs(ctx, vehicle.ID)
	if err != nil {
		log.Warn("parent lookup failed, skipping parent channels", "err", err.Error())
	}
	for _, parentID := range parents {
		channels = append(channels, events.ParentChannel(parentID))
	}
	if vehicle.DriverID != nil {
		channels = append(channels, events.DriverChannel(*vehicle.DriverID))
	}

	for _, channel := range channels {
		if err := ts.publisher.Publish(ctx, channel, events.TypeBusLocation, payload); err != nil {
			observability.PublishErrors.Inc()
			log.Warn("location publish failed", "channel", channel, "err", err.Error())
		}
	}
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return myerrors.InvalidArgument("latitude %v out of range [-90,90]", lat)
	}
	if lon < -180 || lon > 180 {
		return myerrors.InvalidArgument("longitude %v out of range [-180,180]", lon)
	}
	return nil
}

func toCurrentLocation(vehicle model.Vehicle, report model.PositionReport) model.CurrentLocation {
	return model.CurrentLocation{
		VehicleID:   vehicle.ID,
		PlateNumber: vehicle.PlateNumber,
		DriverID:    vehicle.DriverID,
		DriverName:  vehicle.DriverName,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
		SpeedKmh:    report.SpeedKmh,
		Heading:     report.Heading,
		Timestamp:   report.Timestamp,
	}
}

func toReportResponse(report model.PositionReport) dto.PositionReportResponse {
	return dto.PositionReportResponse{
		ID:        report.ID,
		VehicleID: report.VehicleID,
		Latitude:  report.Latitude,
		Longitude: report.Longitude,
		SpeedKmh:  report.SpeedKmh,
		Timestamp: report.Timestamp,
	}
}
