// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditHTTP "github.com/allisson/finvault/internal/audit/http"
	auditMocks "github.com/allisson/finvault/internal/audit/usecase/mocks"
	"github.com/allisson/finvault/internal/config"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/metrics"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
	migrationHTTP "github.com/allisson/finvault/internal/migration/http"
	migrationMocks "github.com/allisson/finvault/internal/migration/usecase/mocks"
	vaultHTTP "github.com/allisson/finvault/internal/vault/http"
	vaultUseCase "github.com/allisson/finvault/internal/vault/usecase"
	vaultMocks "github.com/allisson/finvault/internal/vault/usecase/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestServer creates a test server with a discarding logger.
func createTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, "localhost", 8080, logger)
}

// TestHealthHandler tests the health check endpoint handler.
func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestReadinessHandler_NotReady_NilDB tests the readiness endpoint when DB is nil.
func TestReadinessHandler_NotReady_NilDB(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestCustomLoggerMiddleware tests the custom logging middleware.
func TestCustomLoggerMiddleware(t *testing.T) {
	// Create a test logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
}

// TestRecoveryMiddleware tests Gin's built-in recovery middleware.
func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	// Should not panic - Recovery middleware catches it
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// createMinimalRouter creates a minimal router with only health and ready endpoints for testing.
func createMinimalRouter(server *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(server.logger))

	// Register only health endpoints for basic router tests
	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return router
}

// TestRouter_HealthEndpoint tests the health endpoint through the full router.
func TestRouter_HealthEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestRouter_ReadyEndpoint tests the ready endpoint through the full router when not ready.
func TestRouter_ReadyEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestRouter_NotFoundEndpoint tests 404 handling.
func TestRouter_NotFoundEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestReadinessHandler_Ready tests the readiness endpoint when the database answers a ping.
func TestReadinessHandler_Ready(t *testing.T) {
	db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	sqlMock.ExpectPing()

	server := NewServer(db, "localhost", 8080, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

// TestServer_StartWithoutRouter tests that Start refuses to run before SetupRouter.
func TestServer_StartWithoutRouter(t *testing.T) {
	server := createTestServer()
	err := server.Start(context.Background())
	assert.Error(t, err)
}

// TestServer_ShutdownGracefully tests graceful server shutdown.
func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "127.0.0.1", 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Initialize router with minimal setup
	router := createMinimalRouter(server)
	server.router = router

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Shutdown server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	assert.NoError(t, err)

	// Verify no startup errors
	select {
	case err := <-errChan:
		t.Fatalf("server startup failed: %v", err)
	default:
		// No error, good
	}
}

// TestRequestIDMiddleware_HeaderPresent verifies X-Request-Id header is present in response.
func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Verify X-Request-Id header is present
	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id header should be present")

	// Verify it's a valid UUID
	parsedUUID, err := uuid.Parse(requestID)
	require.NoError(t, err, "X-Request-Id should be a valid UUID")
	assert.NotEqual(t, uuid.Nil, parsedUUID, "X-Request-Id should not be nil UUID")

	_ = logger // Prevent unused variable error
}

// TestMetricsServer_Endpoints tests the metrics server endpoints.
func TestMetricsServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, logger, provider)
	require.NotNil(t, metricsServer)
	handler := metricsServer.GetHandler()

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","namespace":"test_app"}`, w.Body.String())
	})

	t.Run("NoAPIRoutes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/families/family-1/audit-logs", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestMetricsServer_WithoutProvider tests that scrapes fail loudly when metrics are off.
func TestMetricsServer_WithoutProvider(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewMetricsServer("localhost", 8081, logger, nil).GetHandler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"metrics_disabled"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"healthy","namespace":""}`, w.Body.String())
}

type serverMocks struct {
	auditLogger *auditMocks.MockAuditLogger
	migrator    *migrationMocks.MockEncryptionMigrator
	vault       *vaultMocks.MockVaultUseCase
}

// setupFullServer builds a server through SetupRouter with mocked use cases.
func setupFullServer(t *testing.T, cfg *config.Config) (*Server, serverMocks) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := serverMocks{
		auditLogger: auditMocks.NewMockAuditLogger(t),
		migrator:    migrationMocks.NewMockEncryptionMigrator(t),
		vault:       vaultMocks.NewMockVaultUseCase(t),
	}

	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(
		cfg,
		auditHTTP.NewAuditHandler(m.auditLogger, logger),
		migrationHTTP.NewMigrationHandler(m.migrator, time.Minute, logger),
		vaultHTTP.NewVaultHandler(m.vault, logger),
		nil,
	)
	return server, m
}

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:                "error",
		RateLimitEnabled:        false,
		RateLimitRequestsPerSec: 10,
		RateLimitBurst:          20,
	}
}

// TestServer_SetupRouter_Routes tests that every API route reaches its handler.
func TestServer_SetupRouter_Routes(t *testing.T) {
	server, m := setupFullServer(t, testConfig())
	handler := server.GetHandler()
	auditLogger, migrator, vault := m.auditLogger, m.migrator, m.vault

	auditLogger.On("GetAuditLogs", mock.Anything, "family-1", auditDomain.AuditLogFilter{Limit: 50}).
		Return([]*auditDomain.AuditLogEntry{}, nil).
		Once()
	auditLogger.On("GetSecurityDashboard", mock.Anything, "family-1").
		Return(&auditDomain.SecurityDashboard{}, nil).
		Once()
	auditLogger.On("GetPendingApprovals", mock.Anything, "family-1").
		Return([]*auditDomain.SensitiveOperation{}, nil).
		Once()

	summary := &migrationDomain.FamilySummary{FamilyID: "family-1", UserID: "user-1", Success: true}
	migrator.On("MigrateFamilyData", mock.Anything, "family-1", "user-1").Return(summary, nil).Once()

	auditLogger.On("LogBudget", mock.Anything, mock.Anything).Return(uuid.Must(uuid.NewV7()), true).Once()

	onFamily := mock.MatchedBy(func(a vaultUseCase.Actor) bool {
		return a.FamilyID == "family-1" && a.UserID == "user-1"
	})
	blob := &cryptoDomain.EncryptedBlob{Ciphertext: "ff"}
	vault.On("EncryptFinancialAmount", mock.Anything, onFamily, 10.0, "USD").
		Return(&cryptoDomain.FinancialAmountEnvelope{Currency: "USD"}, nil).Once()
	vault.On("DecryptFinancialAmount", mock.Anything, onFamily, mock.Anything).
		Return(&cryptoDomain.FinancialAmount{Amount: 10, Currency: "USD"}, nil).Once()
	vault.On("EncryptBankAccount", mock.Anything, onFamily, mock.Anything).
		Return(&cryptoDomain.BankAccountEnvelope{LastFour: "6789"}, nil).Once()
	vault.On("DecryptBankAccount", mock.Anything, onFamily, mock.Anything).
		Return(&cryptoDomain.BankAccountData{LastFour: "6789"}, nil).Once()
	vault.On("VerifyBankAccountNumbers", mock.Anything, onFamily, "123456789", "", mock.Anything).Return(true).Once()
	vault.On("EncryptUserPII", mock.Anything, onFamily, mock.Anything).
		Return(&cryptoDomain.UserPIIEnvelope{}, nil).Once()
	vault.On("DecryptUserPII", mock.Anything, onFamily, mock.Anything).
		Return(&cryptoDomain.UserPII{FullName: "Ada"}, nil).Once()
	vault.On("EncryptSensitiveData", mock.Anything, onFamily, "note").Return(blob, nil).Once()
	vault.On("DecryptSensitiveData", mock.Anything, onFamily, mock.Anything).Return("note", nil).Once()
	vault.On("EncryptAmount", mock.Anything, onFamily, 5.0).Return(blob, nil).Once()
	vault.On("DecryptAmount", mock.Anything, onFamily, mock.Anything).Return(5.0, nil).Once()
	vault.On("HashSensitiveData", mock.Anything, "secret").Return("aa:bb", nil).Once()
	vault.On("VerifySensitiveDataHash", mock.Anything, "secret", "aa:bb").Return(true).Once()

	const envelope = `"envelope":{"encrypted":"ff","data_type":"financial_amount"}`
	const bankBody = `{"user_id":"user-1","account_number":"123456789","routing_number":"021000021",` +
		`"bank_name":"First Bank","account_type":"checking"}`

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/v1/families/family-1/audit-logs", "", http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/audit-logs",
			`{"type":"budget","user_id":"user-1","action":"UPDATE","record_id":"b-1"}`, http.StatusCreated},
		{http.MethodGet, "/v1/families/family-1/security-dashboard", "", http.StatusOK},
		{http.MethodGet, "/v1/families/family-1/pending-approvals", "", http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/encryption-migrations", `{"user_id":"user-1"}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/financial-amounts/encrypt",
			`{"user_id":"user-1","amount":10,"currency":"USD"}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/financial-amounts/decrypt",
			`{"user_id":"user-1",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/bank-accounts/encrypt", bankBody, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/bank-accounts/decrypt",
			`{"user_id":"user-1",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/bank-accounts/verify",
			`{"user_id":"user-1","account_number":"123456789",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/pii/encrypt",
			`{"user_id":"user-1","pii":{"full_name":"Ada"}}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/pii/decrypt",
			`{"user_id":"user-1",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/sensitive-data/encrypt",
			`{"user_id":"user-1","plaintext":"note"}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/sensitive-data/decrypt",
			`{"user_id":"user-1",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/amounts/encrypt", `{"user_id":"user-1","amount":5}`, http.StatusOK},
		{http.MethodPost, "/v1/families/family-1/amounts/decrypt",
			`{"user_id":"user-1",` + envelope + `}`, http.StatusOK},
		{http.MethodPost, "/v1/hashes", `{"data":"secret"}`, http.StatusOK},
		{http.MethodPost, "/v1/hashes/verify", `{"data":"secret","hash":"aa:bb"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}
}

// TestServer_NoMetricsEndpoint tests that the main server does NOT expose /metrics.
func TestServer_NoMetricsEndpoint(t *testing.T) {
	server, _ := setupFullServer(t, testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestServer_SetupRouter_RateLimited tests that the API group is limited per client IP.
func TestServer_SetupRouter_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitRequestsPerSec = 0.001
	cfg.RateLimitBurst = 1

	server, m := setupFullServer(t, cfg)
	handler := server.GetHandler()

	m.auditLogger.On("GetPendingApprovals", mock.Anything, "family-1").
		Return([]*auditDomain.SensitiveOperation{}, nil).
		Once()

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/families/family-1/pending-approvals", nil)
		req.RemoteAddr = remoteAddr
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)

	limited := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate_limit_exceeded")

	// Health checks stay outside the limited group.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRateLimitMiddleware_PerIP tests that each client IP has its own bucket.
func TestRateLimitMiddleware_PerIP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(RateLimitMiddleware(0.001, 1, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(remoteAddr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = remoteAddr
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1001"))
	assert.Equal(t, http.StatusNoContent, send("192.0.2.2:1000"))
}

// TestRateLimiterStore_EvictIdle tests that idle limiters are dropped.
func TestRateLimiterStore_EvictIdle(t *testing.T) {
	store := &rateLimiterStore{rps: 1, burst: 1}
	store.getLimiter("192.0.2.1")

	store.evictIdle(time.Now().Add(-time.Hour))
	_, ok := store.limiters.Load("192.0.2.1")
	assert.True(t, ok)

	store.evictIdle(time.Now().Add(time.Minute))
	_, ok = store.limiters.Load("192.0.2.1")
	assert.False(t, ok)
}
