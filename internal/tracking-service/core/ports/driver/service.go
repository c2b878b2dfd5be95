package driver

import (
	"context"
	"time"

	"bus-fleet/internal/tracking-service/core/domain/dto"
	"bus-fleet/internal/tracking-service/core/domain/model"
)

type ITrackingService interface {
	Record(ctx context.Context, req dto.PositionReportRequest) (model.PositionReport, error)
	BulkRecord(ctx context.Context, reqs []dto.PositionReportRequest) []dto.BulkItemResult
	GetCurrent(ctx context.Context, vehicleID string) (model.CurrentLocation, error)
	GetHistory(ctx context.Context, q model.HistoryQuery) ([]model.PositionReport, error)
	Cleanup(ctx context.Context, daysToKeep int) (int64, error)
}

type IGeofenceService interface {
	CheckStatus(ctx context.Context, vehicleID string) (dto.GeofenceStatusResponse, error)
}

type ISpeedService interface {
	Monitor(ctx context.Context, vehicle model.Vehicle, speedKmh float64, lat, lon float64, at time.Time) (*model.SpeedViolation, error)
}

type IETAService interface {
	CalculateETA(ctx context.Context, vehicleID string) (model.ETAResult, error)
	AnalyzeETA(ctx context.Context, vehicleID string) (*model.DelayAnalysis, error)
}

type IAnalyticsService interface {
	GetSpeedAnalytics(ctx context.Context, vehicleID string, start, end *time.Time) (model.SpeedAnalyticsSummary, error)
	GetFleetSpeedStats(ctx context.Context, orgID string) (model.FleetSpeedStats, error)
	PredictETA(ctx context.Context, vehicleID, targetStopID string) (model.ETAPrediction, error)
}
