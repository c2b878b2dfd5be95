package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/myerrors"
)

type mockTrackingService struct {
	recordFn     func(ctx context.Context, req dto.PositionReportRequest) (model.PositionReport, error)
	bulkRecordFn func(ctx context.Context, reqs []dto.PositionReportRequest) []dto.BulkItemResult
	getCurrentFn func(ctx context.Context, vehicleID string) (model.CurrentLocation, error)
	getHistoryFn func(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error)
	cleanupFn    func(ctx context.Context, daysToKeep int) (int64, error)
}

func (m *mockTrackingService) Record(ctx context.Context, req dto.PositionReportRequest) (model.PositionReport, error) {
	return m.recordFn(ctx, req)
}

func (m *mockTrackingService) BulkRecord(ctx context.Context, reqs []dto.PositionReportRequest) []dto.BulkItemResult {
	return m.bulkRecordFn(ctx, reqs)
}

func (m *mockTrackingService) GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, error) {
	return m.getCurrentFn(ctx, vehicleID)
}

func (m *mockTrackingService) GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error) {
	return m.getHistoryFn(ctx, q)
}

func (m *mockTrackingService) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	return m.cleanupFn(ctx, daysToKeep)
}

func newHandler(t *testing.T, svc *mockTrackingService) *TrackingHandler {
	t.Helper()
	log, err := mylogger.New(mylogger.LevelError)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewTrackingHandler(svc, 90, log)
}

func TestRecord_Created(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := &mockTrackingService{
		recordFn: func(_ context.Context, req dto.PositionReportRequest) (model.PositionReport, error) {
			return model.PositionReport{
				ID:        "report-1",
				VehicleID: req.VehicleID,
				Latitude:  req.Latitude,
				Longitude: req.Longitude,
				Timestamp: at,
			}, nil
		},
	}
	h := newHandler(t, svc)

	body := `{"vehicle_id":"bus-1","latitude":43.238949,"longitude":76.889709,"speed_kmh":42}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	h.Record()(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.PositionReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "report-1" || resp.VehicleID != "bus-1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRecord_ValidationRejected(t *testing.T) {
	svc := &mockTrackingService{
		recordFn: func(_ context.Context, _ dto.PositionReportRequest) (model.PositionReport, error) {
			t.Fatal("service must not be reached on invalid input")
			return model.PositionReport{}, nil
		},
	}
	h := newHandler(t, svc)

	body := `{"vehicle_id":"bus-1","latitude":91,"longitude":76.889709}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	h.Record()(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecord_UnknownVehicleMapsTo404(t *testing.T) {
	svc := &mockTrackingService{
		recordFn: func(_ context.Context, req dto.PositionReportRequest) (model.PositionReport, error) {
			return model.PositionReport{}, myerrors.NotFound("vehicle %s not found or inactive", req.VehicleID)
		},
	}
	h := newHandler(t, svc)

	body := `{"vehicle_id":"ghost","latitude":43.2,"longitude":76.8}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tracking", strings.NewReader(body))
	h.Record()(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestBulkRecord_Counts(t *testing.T) {
	svc := &mockTrackingService{
		bulkRecordFn: func(_ context.Context, reqs []dto.PositionReportRequest) []dto.BulkItemResult {
			return []dto.BulkItemResult{
				{Index: 0, Status: "ok"},
				{Index: 1, Status: "failed", Error: "latitude 95 out of range [-90,90]: invalid argument"},
				{Index: 2, Status: "ok"},
			}
		},
	}
	h := newHandler(t, svc)

	body := `{"reports":[` +
		`{"vehicle_id":"bus-1","latitude":43.2,"longitude":76.8},` +
		`{"vehicle_id":"bus-1","latitude":95,"longitude":76.8},` +
		`{"vehicle_id":"bus-1","latitude":43.3,"longitude":76.9}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tracking/bulk", strings.NewReader(body))
	h.BulkRecord()(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.BulkRecordResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("expected 2 ok / 1 failed, got %d/%d", resp.Succeeded, resp.Failed)
	}
}

func TestBulkRecord_EmptyBatch(t *testing.T) {
	h := newHandler(t, &mockTrackingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tracking/bulk", strings.NewReader(`{"reports":[]}`))
	h.BulkRecord()(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty batch, got %d", w.Code)
	}
}

func TestCurrent_NotFound(t *testing.T) {
	svc := &mockTrackingService{
		getCurrentFn: func(_ context.Context, vehicleID string) (model.CurrentLocation, error) {
			return model.CurrentLocation{}, myerrors.NotFound("no reports for vehicle %s", vehicleID)
		},
	}
	h := newHandler(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tracking/vehicles/bus-1/current", nil)
	req.SetPathValue("vehicle_id", "bus-1")
	h.Current()(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCleanup_DefaultDays(t *testing.T) {
	var gotDays int
	svc := &mockTrackingService{
		cleanupFn: func(_ context.Context, daysToKeep int) (int64, error) {
			gotDays = daysToKeep
			return 42, nil
		},
	}
	h := newHandler(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/tracking/cleanup", nil)
	h.Cleanup()(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotDays != 90 {
		t.Errorf("expected the configured 90-day default, got %d", gotDays)
	}
	var resp dto.CleanupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DeletedCount != 42 || resp.DaysKept != 90 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCleanup_BadDays(t *testing.T) {
	h := newHandler(t, &mockTrackingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/tracking/cleanup?days_to_keep=-3", nil)
	h.Cleanup()(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative days, got %d", w.Code)
	}
}
