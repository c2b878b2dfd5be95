package handlers

import (
	"fmt"
	"net/http"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
	"bus-fleet/internal/tracking-service/core/ports/driver"
)

type ETAHandler struct {
	etaService       driver.IETAService
	analyticsService driver.IAnalyticsService
	log              mylogger.Logger
}

func NewETAHandler(es driver.IETAService, as driver.IAnalyticsService, log mylogger.Logger) *ETAHandler {
	return &ETAHandler{
		etaService:       es,
		analyticsService: as,
		log:              log,
	}
}

func (eh *ETAHandler) ETA() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")

		res, err := eh.etaService.CalculateETA(r.Context(), vehicleID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, toETAResponse(res))
	}
}

func (eh *ETAHandler) Analysis() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")

		res, err := eh.etaService.AnalyzeETA(r.Context(), vehicleID)
		if err != nil {
			serviceError(w, err)
			return
		}
		if res == nil {
			// no scheduled pickup on the next stop, nothing to analyze
			jsonResponse(w, http.StatusNoContent, nil)
			return
		}

		jsonResponse(w, http.StatusOK, dto.DelayAnalysisResponse{
			VehicleID:        res.VehicleID,
			NextStopID:       res.NextStopID,
			ScheduledPickup:  res.ScheduledPickup,
			EstimatedArrival: res.EstimatedArrival,
			DelayMinutes:     res.DelayMinutes,
			IsDelayed:        res.IsDelayed,
			Recommendations:  res.Recommendations,
		})
	}
}

func (eh *ETAHandler) Prediction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")
		stopID := r.URL.Query().Get("stop_id")
		if stopID == "" {
			JsonError(w, http.StatusBadRequest, fmt.Errorf("stop_id query parameter is required"))
			return
		}

		res, err := eh.analyticsService.PredictETA(r.Context(), vehicleID, stopID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.ETAPredictionResponse{
			VehicleID:        res.VehicleID,
			StopID:           res.StopID,
			PredictedArrival: res.PredictedArrival,
			AvgDelayMinutes:  res.AvgDelayMinutes,
			Confidence:       res.Confidence,
			BasedOnTrips:     res.BasedOnTrips,
		})
	}
}

func toETAResponse(res model.ETAResult) dto.ETAResponse {
	return dto.ETAResponse{
		VehicleID:        res.VehicleID,
		CurrentLocation:  toCurrentResponse(res.CurrentLocation),
		NextStopID:       res.NextStopID,
		NextStopName:     res.NextStopName,
		DistanceMeters:   res.DistanceMeters,
		DurationMinutes:  res.DurationMinutes,
		AverageSpeedKmh:  res.AverageSpeedKmh,
		TrafficFactor:    res.TrafficFactor,
		EstimatedArrival: res.EstimatedArrival,
	}
}
