// Package http provides the HTTP handler that triggers family encryption migrations.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/finvault/internal/httputil"
	"github.com/allisson/finvault/internal/migration/http/dto"
	migrationUseCase "github.com/allisson/finvault/internal/migration/usecase"
	customValidation "github.com/allisson/finvault/internal/validation"
)

// responseMargin is the time left after the run deadline to write the summary.
const responseMargin = 10 * time.Second

// MigrationHandler handles encryption migration requests.
type MigrationHandler struct {
	migrator   migrationUseCase.EncryptionMigrator
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewMigrationHandler creates a new migration handler. runTimeout bounds each run; a
// non-positive value leaves the server's write timeout in charge.
func NewMigrationHandler(
	migrator migrationUseCase.EncryptionMigrator,
	runTimeout time.Duration,
	logger *slog.Logger,
) *MigrationHandler {
	return &MigrationHandler{
		migrator:   migrator,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// StartHandler runs a family migration synchronously and returns its summary. Row
// failures are reported in the body with 200; only errors raised before any row is
// touched, such as a missing user salt, produce an error status. The connection's write
// deadline is pushed past the run deadline, so a run stopped by runTimeout still
// answers with its partial summary.
// POST /v1/families/:family_id/encryption-migrations
func (h *MigrationHandler) StartHandler(c *gin.Context) {
	var req dto.StartMigrationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	familyID := c.Param("family_id")
	ctx, cancel := h.runContext(c)
	defer cancel()

	summary, err := h.migrator.MigrateFamilyData(ctx, familyID, req.UserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("family encryption migration completed",
		slog.String("family_id", familyID),
		slog.Bool("success", summary.Success),
		slog.Int("processed", summary.TotalProcessed),
		slog.Int("failed", summary.TotalFailed),
	)
	c.JSON(http.StatusOK, dto.MapFamilySummaryToResponse(summary))
}

// runContext bounds the run by runTimeout and extends the write deadline to cover it.
func (h *MigrationHandler) runContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.runTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}

	deadline := time.Now().Add(h.runTimeout)
	rc := http.NewResponseController(c.Writer)
	if err := rc.SetWriteDeadline(deadline.Add(responseMargin)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("failed to extend write deadline", slog.Any("error", err))
	}
	return context.WithDeadline(c.Request.Context(), deadline)
}
