package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "dockerfs"

var (
	registry = prometheus.NewRegistry()

	OperationsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Filesystem operations by name and outcome.",
	}, []string{"op", "result"})

	OperationDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Filesystem operation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"op"})

	EngineRequestsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_requests_total",
		Help:      "Round-trips to the container engine by call.",
	}, []string{"call"})

	DiskUsageCacheTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "disk_usage_cache_total",
		Help:      "Aggregate size cache lookups by result.",
	}, []string{"result"})

	OpenHandles = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_handles",
		Help:      "File handles currently allocated.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Registry() *prometheus.Registry {
	return registry
}

func RecordOperation(op, result string, duration time.Duration) {
	OperationsTotal.WithLabelValues(op, result).Inc()
	OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

func RecordEngineRequest(call string) {
	EngineRequestsTotal.WithLabelValues(call).Inc()
}

func RecordDiskUsageCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	DiskUsageCacheTotal.WithLabelValues(result).Inc()
}

func SetOpenHandles(n int) {
	OpenHandles.Set(float64(n))
}

// Server exposes the registry on /metrics.
type Server struct {
	e    *echo.Echo
	addr string
}

func NewServer(addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	return &Server{e: e, addr: addr}
}

func (s *Server) Start() {
	go func() {
		log.Info().Str("address", s.addr).Msg("starting metrics server")
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
