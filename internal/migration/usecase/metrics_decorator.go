package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/metrics"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

const metricsDomain = "migration"

// encryptionMigratorWithMetrics decorates EncryptionMigrator with metrics instrumentation.
// Entity runs report "error" unless the result succeeded.
type encryptionMigratorWithMetrics struct {
	next    EncryptionMigrator
	metrics metrics.BusinessMetrics
	rows    metrics.MigrationMetrics
}

// NewEncryptionMigratorWithMetrics wraps an EncryptionMigrator with metrics recording.
func NewEncryptionMigratorWithMetrics(
	migrator EncryptionMigrator,
	m metrics.BusinessMetrics,
	rows metrics.MigrationMetrics,
) EncryptionMigrator {
	return &encryptionMigratorWithMetrics{
		next:    migrator,
		metrics: m,
		rows:    rows,
	}
}

func (e *encryptionMigratorWithMetrics) record(ctx context.Context, operation string, start time.Time, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	e.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (e *encryptionMigratorWithMetrics) recordRows(ctx context.Context, result *migrationDomain.MigrationResult) {
	if result == nil {
		return
	}
	e.rows.RecordMigratedRows(ctx, string(result.Entity), "encrypted", int64(result.Encrypted))
	e.rows.RecordMigratedRows(ctx, string(result.Entity), "failed", int64(result.Failed))
}

func (e *encryptionMigratorWithMetrics) MigrateAccountBalances(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	start := time.Now()
	result := e.next.MigrateAccountBalances(ctx, familyID, familyKey)
	e.record(ctx, "account_balances_migrate", start, result.Success)
	e.recordRows(ctx, result)
	return result
}

func (e *encryptionMigratorWithMetrics) MigrateTransactionAmounts(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	start := time.Now()
	result := e.next.MigrateTransactionAmounts(ctx, familyID, familyKey)
	e.record(ctx, "transaction_amounts_migrate", start, result.Success)
	e.recordRows(ctx, result)
	return result
}

func (e *encryptionMigratorWithMetrics) MigrateUserPII(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	start := time.Now()
	result := e.next.MigrateUserPII(ctx, familyID, familyKey)
	e.record(ctx, "user_pii_migrate", start, result.Success)
	e.recordRows(ctx, result)
	return result
}

// MigrateFamilyData records the family run and the rows of each entity it ran.
func (e *encryptionMigratorWithMetrics) MigrateFamilyData(
	ctx context.Context,
	familyID, userID string,
) (*migrationDomain.FamilySummary, error) {
	start := time.Now()
	summary, err := e.next.MigrateFamilyData(ctx, familyID, userID)
	e.record(ctx, "family_data_migrate", start, err == nil && summary.Success)
	if summary != nil {
		for _, result := range summary.Results() {
			e.recordRows(ctx, result)
		}
	}
	return summary, err
}
