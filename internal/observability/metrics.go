package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_reports_ingested_total",
		Help: "Position reports persisted to the tracking log",
	})
	ReportsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_reports_rejected_total",
		Help: "Position reports rejected at validation",
	})
	SpeedViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_speed_violations_total",
		Help: "Speed violations recorded, by severity",
	}, []string{"severity"})
	CacheErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_location_cache_errors_total",
		Help: "Location cache reads/writes that failed and were bypassed",
	})
	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_publish_errors_total",
		Help: "Realtime event publishes that failed and were dropped",
	})
	MqttDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleet_mqtt_reports_dropped_total",
		Help: "MQTT position payloads dropped as unparseable or invalid",
	})
	IngestLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleet_ingest_latency_seconds",
		Help:    "Latency of a single position report ingest",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveIngestLatency(start time.Time) {
	IngestLatency.Observe(time.Since(start).Seconds())
}

func StartMetricsServer(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})
	return http.ListenAndServe(":"+port, mux)
}
