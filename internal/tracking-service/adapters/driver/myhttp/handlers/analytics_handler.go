package handlers

import (
	"fmt"
	"net/http"
	"time"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/ports/driver"
)

type AnalyticsHandler struct {
	analyticsService driver.IAnalyticsService
	log              mylogger.Logger
}

func NewAnalyticsHandler(as driver.IAnalyticsService, log mylogger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: as,
		log:              log,
	}
}

func (ah *AnalyticsHandler) SpeedAnalysis() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")

		var start, end *time.Time
		params := r.URL.Query()
		if v := params.Get("start"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid start: %w", err))
				return
			}
			start = &t
		}
		if v := params.Get("end"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				JsonError(w, http.StatusBadRequest, fmt.Errorf("invalid end: %w", err))
				return
			}
			end = &t
		}

		summary, err := ah.analyticsService.GetSpeedAnalytics(r.Context(), vehicleID, start, end)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, toSpeedAnalyticsResponse(summary))
	}
}

func (ah *AnalyticsHandler) FleetSpeedStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.URL.Query().Get("org_id")

		stats, err := ah.analyticsService.GetFleetSpeedStats(r.Context(), orgID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.FleetSpeedStatsResponse{
			OrgID:              stats.OrgID,
			VehicleCount:       stats.VehicleCount,
			FleetAvgSpeedKmh:   stats.FleetAvgSpeedKmh,
			TotalViolations:    stats.TotalViolations,
			CriticalViolations: stats.CriticalViolations,
			TopViolatorID:      stats.TopViolatorID,
			TopViolatorCount:   stats.TopViolatorCount,
		})
	}
}

func toSpeedAnalyticsResponse(s model.SpeedAnalyticsSummary) dto.SpeedAnalyticsResponse {
	res := dto.SpeedAnalyticsResponse{
		VehicleID:       s.VehicleID,
		Start:           s.Start,
		End:             s.End,
		SampleCount:     s.SampleCount,
		AverageSpeedKmh: s.AverageSpeedKmh,
		MaxSpeedKmh:     s.MaxSpeedKmh,
		MinSpeedKmh:     s.MinSpeedKmh,
		TotalDistanceKm: s.TotalDistanceKm,
		SpeedViolations: s.SpeedViolations,
		Violations:      make([]dto.SpeedViolationDTO, 0, len(s.Violations)),
	}
	for _, v := range s.Violations {
		res.Violations = append(res.Violations, dto.SpeedViolationDTO{
			ID:            v.ID,
			VehicleID:     v.VehicleID,
			SpeedKmh:      v.SpeedKmh,
			SpeedLimitKmh: v.SpeedLimitKmh,
			Severity:      string(v.Severity),
			Latitude:      v.Latitude,
			Longitude:     v.Longitude,
			Timestamp:     v.Timestamp,
		})
	}
	return res
}
