package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/finvault/internal/crypto/usecase"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
	customValidation "github.com/allisson/finvault/internal/validation"
)

const (
	// DefaultBatchSize is the page size for transactions and profiles.
	DefaultBatchSize = 50
	// DefaultBatchDelay is the pause between pages.
	DefaultBatchDelay = 100 * time.Millisecond
)

// Config tunes paging. Zero values select the defaults; a negative delay disables it.
type Config struct {
	BatchSize  int
	BatchDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchDelay == 0 {
		c.BatchDelay = DefaultBatchDelay
	}
	return c
}

// encryptionMigrator implements EncryptionMigrator. Rows are processed one at a time on
// the calling goroutine so audit entries keep the row order.
type encryptionMigrator struct {
	encryption   cryptoUseCase.EncryptionUseCase
	accounts     AccountRepository
	transactions TransactionRepository
	profiles     ProfileRepository
	auditLogger  auditUseCase.AuditLogger
	cfg          Config
	progress     ProgressFunc
	logger       *slog.Logger
	now          func() time.Time
}

// entityRun carries the state shared by the rows of one entity migration.
type entityRun struct {
	entity   migrationDomain.Entity
	familyID string
	total    int
	result   *migrationDomain.MigrationResult
}

// begin counts pending rows. It returns false when the run is already finished: nothing
// pending, cancelled, or the count failed.
func (m *encryptionMigrator) begin(
	ctx context.Context,
	entity migrationDomain.Entity,
	familyID string,
	count func(ctx context.Context, familyID string) (int, error),
) (*entityRun, bool) {
	run := &entityRun{
		entity:   entity,
		familyID: familyID,
		result:   migrationDomain.NewMigrationResult(entity, m.now()),
	}

	if err := ctx.Err(); err != nil {
		run.result.Abort(fmt.Sprintf("%v: %v", migrationDomain.ErrMigrationCancelled, err))
		return run, false
	}

	total, err := count(ctx, familyID)
	if err != nil {
		run.result.Abort(fmt.Sprintf("failed to count pending %s: %v", entity, err))
		return run, false
	}
	if total == 0 {
		return run, false
	}

	run.total = total
	run.result.Start()
	m.logger.Info("encryption migration started",
		slog.String("family_id", familyID),
		slog.String("entity", string(entity)),
		slog.Int("pending", total),
	)
	return run, true
}

// cancelled records a cancellation and reports whether the run must stop.
func (m *encryptionMigrator) cancelled(ctx context.Context, run *entityRun) bool {
	if err := ctx.Err(); err != nil {
		run.result.Abort(fmt.Sprintf("%v: %v", migrationDomain.ErrMigrationCancelled, err))
		return true
	}
	return false
}

// processRow encrypts and persists one row through fn. A failure is recorded on the
// result and never stops the run.
func (m *encryptionMigrator) processRow(
	ctx context.Context,
	run *entityRun,
	recordID, item string,
	fn func() error,
) {
	run.result.Processed++
	if m.progress != nil {
		m.progress(migrationDomain.NewMigrationProgress(
			run.entity,
			run.result.Processed,
			max(run.total, run.result.Processed),
			item,
		))
	}

	op := &auditDomain.EncryptionOperation{
		FamilyID:      run.familyID,
		UserID:        ActorFromContext(ctx),
		OperationType: run.entity.OperationType(),
		TableName:     run.entity.Table(),
		RecordID:      &recordID,
		Success:       true,
	}

	if err := fn(); err != nil {
		message := fmt.Sprintf("failed to encrypt %s %s: %v", run.entity.Table(), recordID, err)
		run.result.RecordFailure(message)
		m.logger.Warn("encryption migration row failed",
			slog.String("family_id", run.familyID),
			slog.String("entity", string(run.entity)),
			slog.String("record_id", recordID),
			slog.Any("error", err),
		)
		op.Success = false
		errMessage := err.Error()
		op.ErrorMessage = &errMessage
		m.auditLogger.LogEncryptionOperation(ctx, op)
		return
	}

	run.result.RecordSuccess()
	m.auditLogger.LogEncryptionOperation(ctx, op)
}

// finish resolves the result and emits the BULK_PROCESS audit entry for runs that did
// any work. The entry is written even when ctx was cancelled.
func (m *encryptionMigrator) finish(ctx context.Context, run *entityRun) *migrationDomain.MigrationResult {
	result := run.result
	result.Finish(m.now())

	if result.Processed == 0 && !result.Aborted() {
		return result
	}

	risk := auditDomain.RiskLow
	if result.Failed > 0 || result.Aborted() {
		risk = auditDomain.RiskMedium
		if result.Failed > 0 && result.Failed >= result.Processed {
			risk = auditDomain.RiskHigh
		}
	}

	m.auditLogger.LogFinancialOperation(context.WithoutCancel(ctx), &auditDomain.AuditLogEntry{
		FamilyID:  run.familyID,
		UserID:    ActorFromContext(ctx),
		Action:    auditDomain.ActionBulkProcess,
		TableName: run.entity.Table(),
		OperationContext: map[string]any{
			"operation":   "encryption_migration",
			"entity":      string(run.entity),
			"state":       string(result.State),
			"processed":   result.Processed,
			"encrypted":   result.Encrypted,
			"failed":      result.Failed,
			"duration_ms": result.DurationMs,
		},
		RiskLevel: risk,
	})

	m.logger.Info("encryption migration finished",
		slog.String("family_id", run.familyID),
		slog.String("entity", string(run.entity)),
		slog.String("state", string(result.State)),
		slog.Int("processed", result.Processed),
		slog.Int("encrypted", result.Encrypted),
		slog.Int("failed", result.Failed),
	)
	return result
}

// pause waits the configured delay between pages. It returns the context error if the
// context ends first.
func (m *encryptionMigrator) pause(ctx context.Context) error {
	if m.cfg.BatchDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(m.cfg.BatchDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MigrateAccountBalances encrypts every pending account balance of the family in one
// pass. Account sets are small, so they are not paged.
func (m *encryptionMigrator) MigrateAccountBalances(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	run, ok := m.begin(ctx, migrationDomain.EntityAccounts, familyID, m.accounts.CountUnencrypted)
	if !ok {
		return m.finish(ctx, run)
	}

	rows, err := m.accounts.ListUnencrypted(ctx, familyID)
	if err != nil {
		run.result.Abort(fmt.Sprintf("failed to fetch pending accounts: %v", err))
		return m.finish(ctx, run)
	}

	for _, row := range rows {
		if m.cancelled(ctx, run) {
			break
		}
		m.processRow(ctx, run, row.ID, row.Name, func() error {
			envelope, err := m.encryption.EncryptFinancialAmount(ctx, row.Balance, row.Currency, familyKey)
			if err != nil {
				return err
			}
			return m.accounts.UpdateBalanceEncrypted(ctx, familyID, row.ID, envelope)
		})
	}

	return m.finish(ctx, run)
}

// MigrateTransactionAmounts encrypts pending transaction amounts page by page. Paging is
// keyed on the last id seen, so rows that fail stay pending without being fetched again.
func (m *encryptionMigrator) MigrateTransactionAmounts(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	run, ok := m.begin(ctx, migrationDomain.EntityTransactions, familyID, m.transactions.CountUnencrypted)
	if !ok {
		return m.finish(ctx, run)
	}

	afterID := ""
	for {
		rows, err := m.transactions.ListUnencrypted(ctx, familyID, afterID, m.cfg.BatchSize)
		if err != nil {
			run.result.Abort(fmt.Sprintf("failed to fetch pending transactions: %v", err))
			return m.finish(ctx, run)
		}

		for _, row := range rows {
			if m.cancelled(ctx, run) {
				return m.finish(ctx, run)
			}
			m.processRow(ctx, run, row.ID, row.Description, func() error {
				envelope, err := m.encryption.EncryptFinancialAmount(ctx, row.Amount, row.Currency, familyKey)
				if err != nil {
					return err
				}
				return m.transactions.UpdateAmountEncrypted(ctx, familyID, row.ID, envelope)
			})
			afterID = row.ID
		}

		if len(rows) < m.cfg.BatchSize {
			return m.finish(ctx, run)
		}
		if err := m.pause(ctx); err != nil {
			run.result.Abort(fmt.Sprintf("%v: %v", migrationDomain.ErrMigrationCancelled, err))
			return m.finish(ctx, run)
		}
	}
}

// MigrateUserPII encrypts the PII of every pending profile of the family, page by page.
func (m *encryptionMigrator) MigrateUserPII(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	run, ok := m.begin(ctx, migrationDomain.EntityProfiles, familyID, m.profiles.CountUnencrypted)
	if !ok {
		return m.finish(ctx, run)
	}

	afterUserID := ""
	for {
		rows, err := m.profiles.ListUnencrypted(ctx, familyID, afterUserID, m.cfg.BatchSize)
		if err != nil {
			run.result.Abort(fmt.Sprintf("failed to fetch pending profiles: %v", err))
			return m.finish(ctx, run)
		}

		for _, row := range rows {
			if m.cancelled(ctx, run) {
				return m.finish(ctx, run)
			}
			m.processRow(ctx, run, row.UserID, row.UserID, func() error {
				pii, err := row.UserPII()
				if err != nil {
					return err
				}
				envelope, err := m.encryption.EncryptUserPII(ctx, pii, familyKey)
				if err != nil {
					return err
				}
				return m.profiles.UpdatePIIEncrypted(ctx, familyID, row.UserID, envelope)
			})
			afterUserID = row.UserID
		}

		if len(rows) < m.cfg.BatchSize {
			return m.finish(ctx, run)
		}
		if err := m.pause(ctx); err != nil {
			run.result.Abort(fmt.Sprintf("%v: %v", migrationDomain.ErrMigrationCancelled, err))
			return m.finish(ctx, run)
		}
	}
}

// MigrateFamilyData runs the account, transaction and PII migrations for the family with
// a key derived once from userID's salt. A missing salt returns ErrMissingUserSalt and no
// row is touched.
func (m *encryptionMigrator) MigrateFamilyData(
	ctx context.Context,
	familyID, userID string,
) (*migrationDomain.FamilySummary, error) {
	err := validation.Errors{
		"family_id": validation.Validate(familyID, validation.Required, customValidation.NotBlank),
		"user_id":   validation.Validate(userID, validation.Required, customValidation.NotBlank),
	}.Filter()
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	start := m.now()

	salt, err := m.profiles.GetUserSalt(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}

	familyKey, err := m.encryption.GenerateFamilyKey(ctx, familyID, salt)
	if err != nil {
		return nil, err
	}
	defer familyKey.Zero()

	ctx = WithActor(ctx, userID)
	summary := &migrationDomain.FamilySummary{
		FamilyID:  familyID,
		UserID:    userID,
		StartTime: start,
	}
	summary.Accounts = m.MigrateAccountBalances(ctx, familyID, familyKey)
	summary.Transactions = m.MigrateTransactionAmounts(ctx, familyID, familyKey)
	summary.Profiles = m.MigrateUserPII(ctx, familyID, familyKey)
	summary.Finish(m.now())

	return summary, nil
}

// NewEncryptionMigrator creates an EncryptionMigrator. progress may be nil.
func NewEncryptionMigrator(
	encryption cryptoUseCase.EncryptionUseCase,
	accounts AccountRepository,
	transactions TransactionRepository,
	profiles ProfileRepository,
	auditLogger auditUseCase.AuditLogger,
	cfg Config,
	progress ProgressFunc,
	logger *slog.Logger,
) EncryptionMigrator {
	return &encryptionMigrator{
		encryption:   encryption,
		accounts:     accounts,
		transactions: transactions,
		profiles:     profiles,
		auditLogger:  auditLogger,
		cfg:          cfg.withDefaults(),
		progress:     progress,
		logger:       logger,
		now:          time.Now,
	}
}
