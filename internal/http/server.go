// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditHTTP "github.com/allisson/finvault/internal/audit/http"
	"github.com/allisson/finvault/internal/config"
	"github.com/allisson/finvault/internal/metrics"
	migrationHTTP "github.com/allisson/finvault/internal/migration/http"
	vaultHTTP "github.com/allisson/finvault/internal/vault/http"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers the middleware chain and every route. metricsProvider may be nil.
func (s *Server) SetupRouter(
	cfg *config.Config,
	auditHandler *auditHTTP.AuditHandler,
	migrationHandler *migrationHTTP.MigrationHandler,
	vaultHandler *vaultHTTP.VaultHandler,
	metricsProvider *metrics.Provider,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	families := v1.Group("/families/:family_id")
	{
		families.GET("/audit-logs", auditHandler.ListAuditLogsHandler)
		families.POST("/audit-logs", auditHandler.RecordAuditLogHandler)
		families.GET("/security-dashboard", auditHandler.GetSecurityDashboardHandler)
		families.GET("/pending-approvals", auditHandler.ListPendingApprovalsHandler)
		families.POST("/encryption-migrations", migrationHandler.StartHandler)

		families.POST("/financial-amounts/encrypt", vaultHandler.EncryptFinancialAmountHandler)
		families.POST("/financial-amounts/decrypt", vaultHandler.DecryptFinancialAmountHandler)
		families.POST("/bank-accounts/encrypt", vaultHandler.EncryptBankAccountHandler)
		families.POST("/bank-accounts/decrypt", vaultHandler.DecryptBankAccountHandler)
		families.POST("/bank-accounts/verify", vaultHandler.VerifyBankAccountHandler)
		families.POST("/pii/encrypt", vaultHandler.EncryptUserPIIHandler)
		families.POST("/pii/decrypt", vaultHandler.DecryptUserPIIHandler)
		families.POST("/sensitive-data/encrypt", vaultHandler.EncryptSensitiveDataHandler)
		families.POST("/sensitive-data/decrypt", vaultHandler.DecryptSensitiveDataHandler)
		families.POST("/amounts/encrypt", vaultHandler.EncryptAmountHandler)
		families.POST("/amounts/decrypt", vaultHandler.DecryptAmountHandler)
	}

	hashes := v1.Group("/hashes")
	{
		hashes.POST("", vaultHandler.HashHandler)
		hashes.POST("/verify", vaultHandler.VerifyHashHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
