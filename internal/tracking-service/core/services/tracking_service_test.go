package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/events"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"
)

func newTrackingFixture(t *testing.T) (*TrackingService, *mockTrackingRepo, *mockVehicleRepo, *mockLocationCache, *mockPublisher, *mockSpeedService) {
	t.Helper()
	reports := &mockTrackingRepo{}
	vehicles := &mockVehicleRepo{}
	cache := newMockLocationCache()
	pub := &mockPublisher{}
	speed := &mockSpeedService{}
	ts := NewTrackingService(reports, vehicles, cache, pub, speed, testLogger(t))
	return ts, reports, vehicles, cache, pub, speed
}

func TestRecord_InvalidLatitude(t *testing.T) {
	ts, reports, _, _, pub, _ := newTrackingFixture(t)

	_, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "bus-1",
		Latitude:  91,
		Longitude: 76.8,
	})
	if !errors.Is(err, myerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(reports.inserted) != 0 {
		t.Error("invalid report must not be persisted")
	}
	if len(pub.published) != 0 {
		t.Error("invalid report must not be published")
	}
}

func TestRecord_InvalidLongitude(t *testing.T) {
	ts, reports, _, _, _, _ := newTrackingFixture(t)

	_, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "bus-1",
		Latitude:  43.2,
		Longitude: 200,
	})
	if !errors.Is(err, myerrors.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(reports.inserted) != 0 {
		t.Error("invalid report must not be persisted")
	}
}

func TestRecord_UnknownVehicle(t *testing.T) {
	ts, reports, vehicles, _, _, _ := newTrackingFixture(t)
	vehicles.getActiveFn = func(_ context.Context, vehicleID string) (model.Vehicle, error) {
		return model.Vehicle{}, myerrors.NotFound("vehicle %s not found or inactive", vehicleID)
	}

	_, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "ghost",
		Latitude:  43.2,
		Longitude: 76.8,
	})
	if !errors.Is(err, myerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(reports.inserted) != 0 {
		t.Error("report for unknown vehicle must not be persisted")
	}
}

func TestRecord_HappyPath(t *testing.T) {
	ts, reports, vehicles, cache, pub, speed := newTrackingFixture(t)
	vehicles.getActiveFn = func(_ context.Context, vehicleID string) (model.Vehicle, error) {
		return model.Vehicle{
			ID:          vehicleID,
			OrgID:       "org-1",
			PlateNumber: "KZ 777",
			DriverID:    sptr("driver-1"),
			IsActive:    true,
		}, nil
	}
	vehicles.listParentIDsFn = func(_ context.Context, _ string) ([]string, error) {
		return []string{"parent-1", "parent-2"}, nil
	}
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return fixed }

	persisted, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "bus-1",
		Latitude:  43.238949,
		Longitude: 76.889709,
		SpeedKmh:  fptr(42),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if persisted.ID == "" {
		t.Error("expected persisted report to carry an id")
	}
	if !persisted.Timestamp.Equal(fixed) {
		t.Errorf("expected timestamp defaulted to now, got %v", persisted.Timestamp)
	}
	if len(reports.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(reports.inserted))
	}

	// cache updated with the fresh position
	if loc, ok := cache.GetCurrent(context.Background(), "bus-1"); !ok || loc.Latitude != 43.238949 {
		t.Errorf("expected cached location, got %+v (ok=%v)", loc, ok)
	}

	// speed check ran on the reported sample
	if len(speed.calls) != 1 || speed.calls[0] != 42 {
		t.Errorf("expected one speed check at 42 km/h, got %v", speed.calls)
	}

	// location fanout: org, ops, both parents, driver
	want := map[string]bool{
		events.OrgChannel("org-1"):       true,
		events.OpsChannel:                true,
		events.ParentChannel("parent-1"): true,
		events.ParentChannel("parent-2"): true,
		events.DriverChannel("driver-1"): true,
	}
	if len(pub.published) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(pub.published), pub.channels())
	}
	for _, e := range pub.published {
		if !want[e.Channel] {
			t.Errorf("unexpected channel %s", e.Channel)
		}
		if e.Type != events.TypeBusLocation {
			t.Errorf("channel %s: expected %s, got %s", e.Channel, events.TypeBusLocation, e.Type)
		}
	}
}

func TestRecord_NoSpeedSkipsMonitor(t *testing.T) {
	ts, _, _, _, _, speed := newTrackingFixture(t)

	_, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "bus-1",
		Latitude:  43.2,
		Longitude: 76.8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(speed.calls) != 0 {
		t.Errorf("expected no speed check without a speed sample, got %v", speed.calls)
	}
}

func TestRecord_SpeedMonitorFailureDoesNotFailIngest(t *testing.T) {
	ts, _, _, _, _, speed := newTrackingFixture(t)
	speed.monitorFn = func(_ context.Context, _ model.Vehicle, _, _, _ float64, _ time.Time) (*model.SpeedViolation, error) {
		return nil, errors.New("violations table down")
	}

	_, err := ts.Record(context.Background(), dto.PositionReportRequest{
		VehicleID: "bus-1",
		Latitude:  43.2,
		Longitude: 76.8,
		SpeedKmh:  fptr(90),
	})
	if err != nil {
		t.Fatalf("speed monitor failure must not fail the ingest: %v", err)
	}
}

func TestBulkRecord_PartialFailure(t *testing.T) {
	ts, reports, _, _, _, _ := newTrackingFixture(t)

	results := ts.BulkRecord(context.Background(), []dto.PositionReportRequest{
		{VehicleID: "bus-1", Latitude: 43.2, Longitude: 76.8},
		{VehicleID: "bus-1", Latitude: 95, Longitude: 76.8},
		{VehicleID: "bus-1", Latitude: 43.3, Longitude: 76.9},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Status != "ok" || results[2].Status != "ok" {
		t.Errorf("expected items 0 and 2 ok, got %q and %q", results[0].Status, results[2].Status)
	}
	if results[1].Status != "failed" || results[1].Error == "" {
		t.Errorf("expected item 1 failed with a message, got %+v", results[1])
	}
	if results[1].Index != 1 {
		t.Errorf("expected failing index 1, got %d", results[1].Index)
	}
	if len(reports.inserted) != 2 {
		t.Errorf("expected 2 persisted reports, got %d", len(reports.inserted))
	}
}

func TestGetCurrent_CacheHit(t *testing.T) {
	ts, reports, _, cache, _, _ := newTrackingFixture(t)
	reports.getLatestFn = func(_ context.Context, _ string) (model.PositionReport, error) {
		t.Fatal("cache hit must not touch the log")
		return model.PositionReport{}, nil
	}
	cache.SetCurrent(context.Background(), model.CurrentLocation{
		VehicleID: "bus-1",
		Latitude:  43.2,
		Longitude: 76.8,
	})

	loc, err := ts.GetCurrent(context.Background(), "bus-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Latitude != 43.2 {
		t.Errorf("expected cached latitude, got %v", loc.Latitude)
	}
}

func TestGetCurrent_CacheMissRepopulates(t *testing.T) {
	ts, reports, _, cache, _, _ := newTrackingFixture(t)
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	reports.getLatestFn = func(_ context.Context, vehicleID string) (model.PositionReport, error) {
		return model.PositionReport{
			ID:        "report-9",
			VehicleID: vehicleID,
			Latitude:  43.2,
			Longitude: 76.8,
			Timestamp: at,
		}, nil
	}

	loc, err := ts.GetCurrent(context.Background(), "bus-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.PlateNumber != "KZ 777" {
		t.Errorf("expected denormalized plate number, got %q", loc.PlateNumber)
	}
	if cached, ok := cache.GetCurrent(context.Background(), "bus-1"); !ok || !cached.Timestamp.Equal(at) {
		t.Errorf("expected cache repopulated from the log, got %+v (ok=%v)", cached, ok)
	}
}

func TestGetCurrent_NoReports(t *testing.T) {
	ts, _, _, _, _, _ := newTrackingFixture(t)

	_, err := ts.GetCurrent(context.Background(), "bus-1")
	if !errors.Is(err, myerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetHistory_Defaults(t *testing.T) {
	ts, reports, _, _, _, _ := newTrackingFixture(t)
	fixed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return fixed }

	var got model.HistoryQuery
	reports.getHistoryFn = func(_ context.Context, q model.HistoryQuery) ([]model.PositionReport, error) {
		got = q
		return nil, nil
	}

	if _, err := ts.GetHistory(context.Background(), model.HistoryQuery{VehicleID: "bus-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Limit != 100 || got.Page != 1 {
		t.Errorf("expected defaults limit=100 page=1, got limit=%d page=%d", got.Limit, got.Page)
	}
	if !got.End.Equal(fixed) || !got.Start.Equal(fixed.Add(-24*time.Hour)) {
		t.Errorf("expected trailing 24h window, got [%v, %v]", got.Start, got.End)
	}
}

func TestCleanup(t *testing.T) {
	ts, reports, _, _, _, _ := newTrackingFixture(t)
	fixed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return fixed }

	var gotCutoff time.Time
	reports.deleteOlderThanFn = func(_ context.Context, cutoff time.Time) (int64, error) {
		gotCutoff = cutoff
		return 1234, nil
	}

	deleted, err := ts.Cleanup(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1234 {
		t.Errorf("expected 1234 deleted, got %d", deleted)
	}
	if !gotCutoff.Equal(fixed.AddDate(0, 0, -90)) {
		t.Errorf("expected default 90-day cutoff, got %v", gotCutoff)
	}
}
