package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
)

// RunVerifyAuditLogs recomputes the HMAC signature of every audit entry of a family and
// reports tampered entries. It returns an error when any signature is invalid.
func RunVerifyAuditLogs(
	ctx context.Context,
	auditLogger auditUseCase.AuditLogger,
	logger *slog.Logger,
	writer io.Writer,
	familyID string,
	format string,
) error {
	if familyID == "" {
		return fmt.Errorf("--family-id is required")
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("verifying audit logs", slog.String("family_id", familyID))

	report, err := auditLogger.VerifyAuditLogs(ctx, familyID)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, report); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, report)
	}

	logger.Info("verification completed",
		slog.Int("total_checked", report.Total),
		slog.Int("valid", report.Valid),
		slog.Int("invalid", report.Invalid),
		slog.Int("unsigned", report.Unsigned),
	)

	if report.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.Invalid)
	}

	return nil
}

func outputVerifyText(writer io.Writer, report *auditDomain.VerificationReport) {
	_, _ = fmt.Fprintf(writer, "Audit Log Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=================================\n\n")
	_, _ = fmt.Fprintf(writer, "Family:         %s\n\n", report.FamilyID)

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.Total)
	_, _ = fmt.Fprintf(writer, "Unsigned:       %d\n", report.Unsigned)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.Valid)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", report.Invalid)

	switch {
	case report.Invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d log(s) failed integrity check!\n\n", report.Invalid)
		_, _ = fmt.Fprintf(writer, "Invalid Log IDs:\n")
		for _, id := range report.InvalidIDs {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.Total == 0:
		_, _ = fmt.Fprintf(writer, "Status: No logs found for family\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

func outputVerifyJSON(writer io.Writer, report *auditDomain.VerificationReport) error {
	return writeJSON(writer, map[string]any{
		"family_id":      report.FamilyID,
		"total_checked":  report.Total,
		"unsigned_count": report.Unsigned,
		"valid_count":    report.Valid,
		"invalid_count":  report.Invalid,
		"invalid_logs":   report.InvalidIDs,
		"passed":         report.Invalid == 0,
	})
}
