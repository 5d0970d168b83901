package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
	migrationUseCase "github.com/allisson/finvault/internal/migration/usecase"
)

// MigratorFactory builds a migrator that reports each processed row to progress.
type MigratorFactory func(progress migrationUseCase.ProgressFunc) (migrationUseCase.EncryptionMigrator, error)

// RunEncryptFamilyData encrypts every pending account balance, transaction amount and
// profile of a family. In text mode each processed row is printed as it happens. It
// returns an error when any row failed so the exit status reflects a partial run.
func RunEncryptFamilyData(
	ctx context.Context,
	newMigrator MigratorFactory,
	logger *slog.Logger,
	writer io.Writer,
	familyID, userID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	var progress migrationUseCase.ProgressFunc
	if format == "text" {
		progress = func(p migrationDomain.MigrationProgress) {
			_, _ = fmt.Fprintf(writer, "[%s] %d/%d (%.1f%%) %s\n",
				p.Stage, p.Current, p.Total, p.Percentage, p.CurrentItem)
		}
	}

	migrator, err := newMigrator(progress)
	if err != nil {
		return fmt.Errorf("failed to initialize encryption migrator: %w", err)
	}

	logger.Info("encrypting family data",
		slog.String("family_id", familyID),
		slog.String("user_id", userID),
	)

	summary, err := migrator.MigrateFamilyData(ctx, familyID, userID)
	if err != nil {
		return fmt.Errorf("failed to encrypt family data: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, summary); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputMigrationText(writer, summary)
	}

	logger.Info("family data encryption finished",
		slog.String("family_id", familyID),
		slog.Bool("success", summary.Success),
		slog.Int("processed", summary.TotalProcessed),
		slog.Int("encrypted", summary.TotalEncrypted),
		slog.Int("failed", summary.TotalFailed),
	)

	if !summary.Success {
		return fmt.Errorf("encryption migration incomplete: %d failed row(s)", summary.TotalFailed)
	}
	return nil
}

func outputMigrationText(writer io.Writer, summary *migrationDomain.FamilySummary) {
	_, _ = fmt.Fprintf(writer, "\nFamily Data Encryption\n")
	_, _ = fmt.Fprintf(writer, "======================\n\n")
	_, _ = fmt.Fprintf(writer, "Family:     %s\n", summary.FamilyID)
	_, _ = fmt.Fprintf(writer, "Duration:   %dms\n\n", summary.DurationMs)

	for _, result := range summary.Results() {
		_, _ = fmt.Fprintf(writer, "%-13s %-17s processed=%d encrypted=%d failed=%d\n",
			result.Entity, result.State, result.Processed, result.Encrypted, result.Failed)
		for _, msg := range result.Errors {
			_, _ = fmt.Fprintf(writer, "  - %s\n", msg)
		}
	}

	_, _ = fmt.Fprintf(writer, "\nTotal: processed=%d encrypted=%d failed=%d\n",
		summary.TotalProcessed, summary.TotalEncrypted, summary.TotalFailed)
	if summary.Success {
		_, _ = fmt.Fprintf(writer, "Status: COMPLETED\n")
	} else {
		_, _ = fmt.Fprintf(writer, "Status: PARTIALLY FAILED\n")
	}
}
