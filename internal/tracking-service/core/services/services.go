package services

import (
	"time"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/core/ports/driven"
)

type Repositories struct {
	Tracking   driven.ITrackingRepository
	Violations driven.IViolationRepository
	Geofences  driven.IGeofenceRepository
	Routes     driven.IRouteRepository
	Vehicles   driven.IVehicleRepository
}

type Service struct {
	TrackingService  *TrackingService
	GeofenceService  *GeofenceService
	SpeedService     *SpeedService
	ETAService       *ETAService
	AnalyticsService *AnalyticsService
}

func New(
	repos Repositories,
	cache driven.ILocationCache,
	publisher driven.IEventPublisher,
	cfg *config.Trackingconfig,
	log mylogger.Logger,
) *Service {
	thresholds := DefaultSpeedThresholds()
	offset := 2 * time.Hour
	if cfg != nil {
		thresholds = SpeedThresholds{
			LimitKmh:     cfg.SpeedLimitKmh,
			WarningKmh:   cfg.WarningKmh,
			ViolationKmh: cfg.ViolationKmh,
			CriticalKmh:  cfg.CriticalKmh,
		}
		offset = cfg.ScheduledArrivalOffset
	}

	speed := NewSpeedService(thresholds, repos.Violations, publisher, log)
	tracking := NewTrackingService(repos.Tracking, repos.Vehicles, cache, publisher, speed, log)
	geofence := NewGeofenceService(repos.Geofences, tracking, log)
	eta := NewETAService(repos.Tracking, repos.Routes, tracking, log)
	analytics := NewAnalyticsService(
		repos.Tracking, repos.Violations, repos.Vehicles, repos.Routes, eta, offset, log,
	)

	return &Service{
		TrackingService:  tracking,
		GeofenceService:  geofence,
		SpeedService:     speed,
		ETAService:       eta,
		AnalyticsService: analytics,
	}
}
