package myhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"bus-fleet/internal/config"
	"bus-fleet/internal/mylogger"
	"bus-fleet/internal/tracking-service/adapters/driven/bm"
	"bus-fleet/internal/tracking-service/adapters/driven/cache"
	"bus-fleet/internal/tracking-service/adapters/driven/db"
	"bus-fleet/internal/tracking-service/adapters/driven/mqttsub"
	"bus-fleet/internal/tracking-service/adapters/driven/notify"
	"bus-fleet/internal/tracking-service/adapters/driver/myhttp/handlers"
	"bus-fleet/internal/tracking-service/adapters/driver/myhttp/middleware"
	"bus-fleet/internal/tracking-service/adapters/driver/myhttp/ws"
	ports "bus-fleet/internal/tracking-service/core/ports/driven"
	"bus-fleet/internal/tracking-service/core/services"
)

const WaitTime = 10

type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	srv    *http.Server
	mylog  mylogger.Logger
	db     *db.DataBase
	mb     ports.IFleetBroker
	mqtt   *mqttsub.Subscriber
	ctx    context.Context
	appCtx context.Context
	mu     sync.Mutex
}

func NewServer(ctx, appCtx context.Context, mylog mylogger.Logger, cfg *config.Config) *Server {
	return &Server{
		ctx:    ctx,
		appCtx: appCtx,
		cfg:    cfg,
		mylog:  mylog,
		mux:    http.NewServeMux(),
	}
}

// Run initializes dependencies and routes, then starts listening. It returns
// when the server stops.
func (s *Server) Run() error {
	mylog := s.mylog.Action("server_started")

	database, err := db.ConnectDB(s.ctx, s.cfg.DB, mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = database
	mylog.Info("Successful database connection")

	mb, err := bm.New(s.appCtx, *s.cfg.RabbitMq, s.mylog)
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	s.mb = mb
	mylog.Info("Successful message broker connection")

	if err := s.Configure(); err != nil {
		return fmt.Errorf("failed to configure server: %w", err)
	}

	s.mu.Lock()
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%v", s.cfg.Srv.TrackingServicePort),
		Handler: s.mux,
	}
	s.mu.Unlock()

	mylog = mylog.WithGroup("details").With("port", s.cfg.Srv.TrackingServicePort)

	mylog.Info("server is running")
	return s.startHTTPServer()
}

// Stop provides a programmatic shutdown. Accepts a context for timeout control.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mylog.Info("Shutting down HTTP server...")

	if s.mqtt != nil {
		s.mqtt.Stop()
	}

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, WaitTime*time.Second)
		defer cancel()

		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.mylog.Error("Failed to shut down HTTP server gracefully", err)
			return fmt.Errorf("http server shutdown: %w", err)
		}
	}

	if s.mb != nil {
		if err := s.mb.Close(); err != nil {
			s.mylog.Error("Failed to close message broker", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.mylog.Error("Failed to close database", err)
			return fmt.Errorf("db close: %w", err)
		}
		s.mylog.Info("Database closed")
	}

	s.mylog.Info("HTTP server shut down gracefully")
	return nil
}

func (s *Server) startHTTPServer() error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-s.ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Configure wires repositories, services, handlers and routes.
func (s *Server) Configure() error {
	// Repositories
	repos := db.New(s.db)

	// Driven adapters
	locationCache := cache.Connect(s.appCtx, s.cfg.Redis, s.mylog)
	publisher := bm.NewPublisher(s.mb, s.mylog)

	// Services
	svc := services.New(services.Repositories{
		Tracking:   repos.TrackingRepository,
		Violations: repos.ViolationRepository,
		Geofences:  repos.GeofenceRepository,
		Routes:     repos.RouteRepository,
		Vehicles:   repos.VehicleRepository,
	}, locationCache, publisher, s.cfg.Tracking, s.mylog)

	// Handlers
	trackingHandler := handlers.NewTrackingHandler(svc.TrackingService, s.cfg.Tracking.CleanupDaysToKeep, s.mylog)
	etaHandler := handlers.NewETAHandler(svc.ETAService, svc.AnalyticsService, s.mylog)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.AnalyticsService, s.mylog)
	geofenceHandler := handlers.NewGeofenceHandler(svc.GeofenceService, s.mylog)

	authMiddleware := middleware.NewAuthMiddleware(s.cfg.App.PublicJwtSecret)

	// Realtime fanout: broker deliveries land in websocket rooms keyed by
	// routing key.
	dispatcher := ws.NewDispatcher(s.mylog)
	notifier := notify.New(s.appCtx, dispatcher, s.mb, s.mylog)
	if err := notifier.Run(); err != nil {
		return fmt.Errorf("start notifier: %w", err)
	}

	// MQTT ingest shares the service path with POST /tracking.
	sub, err := mqttsub.New(s.cfg.Mqtt, svc.TrackingService, s.mylog)
	if err != nil {
		s.mylog.Error("mqtt unavailable, ingest limited to HTTP", err)
	} else {
		s.mqtt = sub
		if err := sub.Start(s.appCtx); err != nil {
			return fmt.Errorf("start mqtt subscriber: %w", err)
		}
	}

	// Register routes
	s.mux.Handle("POST /tracking", authMiddleware.Wrap(trackingHandler.Record()))
	s.mux.Handle("POST /tracking/bulk", authMiddleware.Wrap(trackingHandler.BulkRecord()))
	s.mux.Handle("DELETE /tracking/cleanup", authMiddleware.WrapStaff(trackingHandler.Cleanup()))

	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/current", authMiddleware.Wrap(trackingHandler.Current()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/history", authMiddleware.Wrap(trackingHandler.History()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/eta", authMiddleware.Wrap(etaHandler.ETA()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/eta/analysis", authMiddleware.Wrap(etaHandler.Analysis()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/eta/prediction", authMiddleware.Wrap(etaHandler.Prediction()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/speed-analysis", authMiddleware.Wrap(analyticsHandler.SpeedAnalysis()))
	s.mux.Handle("GET /tracking/vehicles/{vehicle_id}/geofence", authMiddleware.Wrap(geofenceHandler.Status()))
	s.mux.Handle("GET /tracking/fleet/speed-stats", authMiddleware.Wrap(analyticsHandler.FleetSpeedStats()))

	// websocket routes
	s.mux.Handle("GET /ws/rooms/{room}", dispatcher.JoinHandler())

	return nil
}
