package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/finvault/internal/metrics"
)

// scrapeTimeout bounds one /metrics response.
const scrapeTimeout = 10 * time.Second

// MetricsServer serves Prometheus scrapes on their own port, away from the rate limited
// API. Scrapes are not request-logged.
type MetricsServer struct {
	server    *http.Server
	namespace string
	logger    *slog.Logger
}

// NewMetricsServer creates a new MetricsServer. With a nil provider /metrics answers
// 503 so a misconfigured scrape target is visible instead of silently empty.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	metricsProvider *metrics.Provider,
) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery())

	var namespace string
	if metricsProvider != nil {
		namespace = metricsProvider.Namespace()
		router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))
	} else {
		router.GET("/metrics", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics_disabled"})
		})
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "namespace": namespace})
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: scrapeTimeout,
			IdleTimeout:  2 * time.Minute,
		},
		namespace: namespace,
		logger:    logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves scrapes until Shutdown.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("starting metrics server",
		slog.String("addr", s.server.Addr),
		slog.String("namespace", s.namespace),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the metrics HTTP server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
