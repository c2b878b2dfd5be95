package services

import (
	"context"
	"testing"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"
)

func testLogger(t *testing.T) mylogger.Logger {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

type mockTrackingRepo struct {
	insertFn          func(ctx context.Context, report model.PositionReport) (model.PositionReport, error)
	getLatestFn       func(ctx context.Context, vehicleID string) (model.PositionReport, error)
	getHistoryFn      func(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error)
	getRecentSpeedsFn func(ctx context.Context, vehicleID string, since time.Time, limit int) ([]float64, error)
	getSpeedSamplesFn func(ctx context.Context, vehicleID string, start, end time.Time) ([]model.PositionReport, error)
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)

	inserted []model.PositionReport
}

func (m *mockTrackingRepo) Insert(ctx context.Context, report model.PositionReport) (model.PositionReport, error) {
	m.inserted = append(m.inserted, report)
	if m.insertFn != nil {
		return m.insertFn(ctx, report)
	}
	report.ID = "report-1"
	return report, nil
}

func (m *mockTrackingRepo) GetLatest(ctx context.Context, vehicleID string) (model.PositionReport, error) {
	if m.getLatestFn != nil {
		return m.getLatestFn(ctx, vehicleID)
	}
	return model.PositionReport{}, myerrors.NotFound("no reports for vehicle %s", vehicleID)
}

func (m *mockTrackingRepo) GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error) {
	if m.getHistoryFn != nil {
		return m.getHistoryFn(ctx, q)
	}
	return nil, nil
}

func (m *mockTrackingRepo) GetRecentSpeeds(ctx context.Context, vehicleID string, since time.Time, limit int) ([]float64, error) {
	if m.getRecentSpeedsFn != nil {
		return m.getRecentSpeedsFn(ctx, vehicleID, since, limit)
	}
	return nil, nil
}

func (m *mockTrackingRepo) GetSpeedSamples(ctx context.Context, vehicleID string, start, end time.Time) ([]model.PositionReport, error) {
	if m.getSpeedSamplesFn != nil {
		return m.getSpeedSamplesFn(ctx, vehicleID, start, end)
	}
	return nil, nil
}

func (m *mockTrackingRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

type mockViolationRepo struct {
	insertFn       func(ctx context.Context, v model.SpeedViolation) (model.SpeedViolation, error)
	listInWindowFn func(ctx context.Context, vehicleID string, start, end time.Time) ([]model.SpeedViolation, error)

	inserted []model.SpeedViolation
}

func (m *mockViolationRepo) Insert(ctx context.Context, v model.SpeedViolation) (model.SpeedViolation, error) {
	m.inserted = append(m.inserted, v)
	if m.insertFn != nil {
		return m.insertFn(ctx, v)
	}
	v.ID = "violation-1"
	return v, nil
}

func (m *mockViolationRepo) ListInWindow(ctx context.Context, vehicleID string, start, end time.Time) ([]model.SpeedViolation, error) {
	if m.listInWindowFn != nil {
		return m.listInWindowFn(ctx, vehicleID, start, end)
	}
	return nil, nil
}

type mockGeofenceRepo struct {
	listActiveFn func(ctx context.Context, vehicleID string) ([]model.Geofence, error)
}

func (m *mockGeofenceRepo) ListActive(ctx context.Context, vehicleID string) ([]model.Geofence, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, vehicleID)
	}
	return nil, nil
}

type mockRouteRepo struct {
	getActiveRouteFn      func(ctx context.Context, vehicleID string) (model.Route, error)
	getRecentStopVisitsFn func(ctx context.Context, stopID string, limit int) ([]model.StopVisit, error)
}

func (m *mockRouteRepo) GetActiveRoute(ctx context.Context, vehicleID string) (model.Route, error) {
	if m.getActiveRouteFn != nil {
		return m.getActiveRouteFn(ctx, vehicleID)
	}
	return model.Route{}, myerrors.NotFound("no active route for vehicle %s", vehicleID)
}

func (m *mockRouteRepo) GetRecentStopVisits(ctx context.Context, stopID string, limit int) ([]model.StopVisit, error) {
	if m.getRecentStopVisitsFn != nil {
		return m.getRecentStopVisitsFn(ctx, stopID, limit)
	}
	return nil, nil
}

type mockVehicleRepo struct {
	getActiveFn     func(ctx context.Context, vehicleID string) (model.Vehicle, error)
	listActiveFn    func(ctx context.Context, orgID string) ([]model.Vehicle, error)
	listParentIDsFn func(ctx context.Context, vehicleID string) ([]string, error)
}

func (m *mockVehicleRepo) GetActive(ctx context.Context, vehicleID string) (model.Vehicle, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx, vehicleID)
	}
	return model.Vehicle{ID: vehicleID, OrgID: "org-1", PlateNumber: "KZ 777", IsActive: true}, nil
}

func (m *mockVehicleRepo) ListActive(ctx context.Context, orgID string) ([]model.Vehicle, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, orgID)
	}
	return nil, nil
}

func (m *mockVehicleRepo) ListParentIDs(ctx context.Context, vehicleID string) ([]string, error) {
	if m.listParentIDsFn != nil {
		return m.listParentIDsFn(ctx, vehicleID)
	}
	return nil, nil
}

type mockLocationCache struct {
	entries map[string]model.CurrentLocation
	sets    int
}

func newMockLocationCache() *mockLocationCache {
	return &mockLocationCache{entries: make(map[string]model.CurrentLocation)}
}

func (m *mockLocationCache) SetCurrent(_ context.Context, loc model.CurrentLocation) {
	m.sets++
	m.entries[loc.VehicleID] = loc
}

func (m *mockLocationCache) GetCurrent(_ context.Context, vehicleID string) (model.CurrentLocation, bool) {
	loc, ok := m.entries[vehicleID]
	return loc, ok
}

type publishedEvent struct {
	Channel string
	Type    string
	Payload any
}

type mockPublisher struct {
	publishFn func(ctx context.Context, channel, eventType string, payload any) error
	published []publishedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, channel, eventType string, payload any) error {
	m.published = append(m.published, publishedEvent{Channel: channel, Type: eventType, Payload: payload})
	if m.publishFn != nil {
		return m.publishFn(ctx, channel, eventType, payload)
	}
	return nil
}

func (m *mockPublisher) channels() []string {
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.Channel)
	}
	return out
}

type mockSpeedService struct {
	monitorFn func(ctx context.Context, vehicle model.Vehicle, speedKmh, lat, lon float64, at time.Time) (*model.SpeedViolation, error)
	calls     []float64
}

func (m *mockSpeedService) Monitor(ctx context.Context, vehicle model.Vehicle, speedKmh, lat, lon float64, at time.Time) (*model.SpeedViolation, error) {
	m.calls = append(m.calls, speedKmh)
	if m.monitorFn != nil {
		return m.monitorFn(ctx, vehicle, speedKmh, lat, lon, at)
	}
	return nil, nil
}

type mockTrackingService struct {
	getCurrentFn func(ctx context.Context, vehicleID string) (model.CurrentLocation, error)
}

func (m *mockTrackingService) Record(_ context.Context, _ dto.PositionReportRequest) (model.PositionReport, error) {
	return model.PositionReport{}, nil
}

func (m *mockTrackingService) BulkRecord(_ context.Context, _ []dto.PositionReportRequest) []dto.BulkItemResult {
	return nil
}

func (m *mockTrackingService) GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, error) {
	if m.getCurrentFn != nil {
		return m.getCurrentFn(ctx, vehicleID)
	}
	return model.CurrentLocation{}, myerrors.NotFound("no location for vehicle %s", vehicleID)
}

func (m *mockTrackingService) GetHistory(_ context.Context, _ model.HistoryQuery) ([]model.PositionReport, error) {
	return nil, nil
}

func (m *mockTrackingService) Cleanup(_ context.Context, _ int) (int64, error) {
	return 0, nil
}

type mockETAService struct {
	calculateETAFn func(ctx context.Context, vehicleID string) (model.ETAResult, error)
}

func (m *mockETAService) CalculateETA(ctx context.Context, vehicleID string) (model.ETAResult, error) {
	if m.calculateETAFn != nil {
		return m.calculateETAFn(ctx, vehicleID)
	}
	return model.ETAResult{}, nil
}

func (m *mockETAService) AnalyzeETA(_ context.Context, _ string) (*model.DelayAnalysis, error) {
	return nil, nil
}
