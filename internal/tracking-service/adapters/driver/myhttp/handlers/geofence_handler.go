package handlers

import (
	"net/http"

	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/ports/driver"
)

type GeofenceHandler struct {
	geofenceService driver.IGeofenceService
	log             mylogger.Logger
}

func NewGeofenceHandler(gs driver.IGeofenceService, log mylogger.Logger) *GeofenceHandler {
	return &GeofenceHandler{
		geofenceService: gs,
		log:             log,
	}
}

func (gh *GeofenceHandler) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vehicleID := r.PathValue("vehicle_id")

		res, err := gh.geofenceService.CheckStatus(r.Context(), vehicleID)
		if err != nil {
			serviceError(w, err)
			return
		}

		jsonResponse(w, http.StatusOK, res)
	}
}
