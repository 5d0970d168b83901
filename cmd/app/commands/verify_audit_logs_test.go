package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditMocks "github.com/allisson/finvault/internal/audit/usecase/mocks"
)

func TestRunVerifyAuditLogs(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	report := &auditDomain.VerificationReport{
		FamilyID:   "family-1",
		Total:      10,
		Valid:      9,
		Unsigned:   1,
		InvalidIDs: []uuid.UUID{},
	}

	t.Run("success-text", func(t *testing.T) {
		mockLogger := auditMocks.NewMockAuditLogger(t)
		mockLogger.On("VerifyAuditLogs", ctx, "family-1").Return(report, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockLogger, logger, &out, "family-1", "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Audit Log Integrity Verification")
		assert.Contains(t, out.String(), "Status: PASSED")
	})

	t.Run("success-json", func(t *testing.T) {
		mockLogger := auditMocks.NewMockAuditLogger(t)
		mockLogger.On("VerifyAuditLogs", ctx, "family-1").Return(report, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockLogger, logger, &out, "family-1", "json")
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, float64(10), result["total_checked"])
		assert.Equal(t, true, result["passed"])
	})

	t.Run("missing-family", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--family-id")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunVerifyAuditLogs(ctx, nil, logger, nil, "family-1", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format")
	})

	t.Run("verify-error", func(t *testing.T) {
		mockLogger := auditMocks.NewMockAuditLogger(t)
		mockLogger.On("VerifyAuditLogs", ctx, "family-1").Return(nil, errors.New("db down")).Once()

		err := RunVerifyAuditLogs(ctx, mockLogger, logger, &bytes.Buffer{}, "family-1", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to verify audit logs")
	})

	t.Run("integrity-failure", func(t *testing.T) {
		mockLogger := auditMocks.NewMockAuditLogger(t)
		failureReport := &auditDomain.VerificationReport{
			FamilyID:   "family-1",
			Total:      10,
			Valid:      8,
			Invalid:    2,
			InvalidIDs: []uuid.UUID{uuid.New(), uuid.New()},
		}
		mockLogger.On("VerifyAuditLogs", ctx, "family-1").Return(failureReport, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditLogs(ctx, mockLogger, logger, &out, "family-1", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "integrity check failed")
		assert.Contains(t, out.String(), "WARNING: 2 log(s) failed integrity check!")
	})
}
