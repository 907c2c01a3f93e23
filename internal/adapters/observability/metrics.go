package observability

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusmap", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusmap", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusmap", Name: "external_requests_total", Help: "Calls to the campus backend."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "campusmap", Name: "external_request_duration_seconds",
			Help:    "Campus backend call duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	StoreEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusmap", Name: "store_events_total", Help: "Session store hits/misses/saves/deletes."},
		[]string{"store", "event"}, // event: hit|miss|save|del
	)
	FacilityLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusmap", Name: "facility_loads_total", Help: "Facility loads by outcome."},
		[]string{"outcome"}, // ok|error|stale
	)
	UIEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "campusmap", Name: "ui_events_total", Help: "Dispatched page events."},
		[]string{"target"},
	)
	LiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "campusmap", Name: "live_sessions", Help: "Controllers held in memory."},
	)
)

// Serve starts a standalone metrics listener when addr is set.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// MetricsAddr reads METRICS_ADDR for binaries that do not load the full config.
func MetricsAddr() string { return os.Getenv("METRICS_ADDR") }

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		StoreEvents, FacilityLoads, UIEvents, LiveSessions)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveStore(store, event string) { // event: hit|miss|save|del
	StoreEvents.WithLabelValues(store, event).Inc()
}

func ObserveLoad(outcome string) { FacilityLoads.WithLabelValues(outcome).Inc() }

func ObserveEvent(target string) { UIEvents.WithLabelValues(target).Inc() }

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
