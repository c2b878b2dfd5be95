package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/ports/driver"

	"github.com/go-playground/validator/v10"
)

type TrackingHandler struct {
	trackingService driver.ITrackingService
	validate        *validator.Validate
	defaultDays     int
	log             mylogger.Logger
}

func NewTrackingHandler(ts driver.ITrackingService, defaultDays int, log mylogger.Logger) *TrackingHandler {
	return &TrackingHandler{
		trackingService: ts,
		validate:        validator.New(),
		defaultDays:     defaultDays,
		log:             log,
	}
}

func (th *TrackingHandler) Record() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.PositionReportRequest{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if err := th.validate.Struct(req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}

		report, err := th.trackingService.Record(r.Context(), req)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusCreated, toReportResponse(report))
	}
}

func (th *TrackingHandler) BulkRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.BulkRecordRequest{}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			JsonError(w, http.StatusBadRequest, err)
			return
		}
		if len(req.Reports) == 0 {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("reports must not be empty"))
			return
		}

		results := th.trackingService.BulkRecord(r.Context(), req.Reports)

		res := dto.BulkRecordResponse{Results: results}
		for _, item := range results {
			if item.Status == "ok" {
				res.Succeeded++
			} else {
				res.Failed++
			}
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (th *TrackingHandler) Current() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")

		loc, err := th.trackingService.GetCurrent(r.Context(), vehicleID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, toCurrentResponse(loc))
	}
}

func (th *TrackingHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := model.HistoryQuery{VehicleID: r.PathValue("vehicle_id")}

		params := r.URL.Query()
		if v := params.Get("start"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid start: %w", err))
				return
			}
			q.Start = t
		}
		if v := params.Get("end"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid end: %w", err))
				return
			}
			q.End = t
		}
		q.Page, _ = strconv.Atoi(params.Get("page"))
		q.Limit, _ = strconv.Atoi(params.Get("limit"))

		reports, err := th.trackingService.GetHistory(r.Context(), q)
		if err != nil {
			serviceError(w, err)
			return
		}

		res := dto.HistoryResponse{
			VehicleID: q.VehicleID,
			Page:      q.Page,
			Limit:     q.Limit,
			Reports:   make([]dto.PositionReportResponse, 0, len(reports)),
		}
		if res.Page < 1 {
			res.Page = 1
		}
		if res.Limit < 1 {
			res.Limit = 100
		}
		for _, rep := range reports {
			res.Reports = append(res.Reports, toReportResponse(rep))
		}

		jsonResponse(w, http.StatusOK, res)
	}
}

func (th *TrackingHandler) Cleanup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := th.defaultDays
		if v := r.URL.Query().Get("days_to_keep"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				JsonError(w, http.StatusBadRequest, fmt.Errorf("days_to_keep must be a positive integer"))
				return
			}
			days = parsed
		}

		deleted, err := th.trackingService.Cleanup(r.Context(), days)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.CleanupResponse{
			DaysKept:     days,
			DeletedCount: deleted,
		})
	}
}

func toReportResponse(rep model.PositionReport) dto.PositionReportResponse {
	return dto.PositionReportResponse{
		ID:        rep.ID,
		VehicleID: rep.VehicleID,
		Latitude:  rep.Latitude,
		Longitude: rep.Longitude,
		SpeedKmh:  rep.SpeedKmh,
		Timestamp: rep.Timestamp,
	}
}

func toCurrentResponse(loc model.CurrentLocation) dto.CurrentLocationResponse {
	return dto.CurrentLocationResponse{
		VehicleID:   loc.VehicleID,
		PlateNumber: loc.PlateNumber,
		DriverName:  loc.DriverName,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		SpeedKmh:    loc.SpeedKmh,
		Heading:     loc.Heading,
		Timestamp:   loc.Timestamp,
	}
}
