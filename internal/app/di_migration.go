package app

import (
	"fmt"
	"sync"

	"github.com/allisson/finvault/internal/database"
	migrationHTTP "github.com/allisson/finvault/internal/migration/http"
	migrationRepository "github.com/allisson/finvault/internal/migration/repository"
	migrationUseCase "github.com/allisson/finvault/internal/migration/usecase"
)

type migrationState struct {
	accountRepository     migrationUseCase.AccountRepository
	transactionRepository migrationUseCase.TransactionRepository
	profileRepository     migrationUseCase.ProfileRepository
	encryptionMigrator    migrationUseCase.EncryptionMigrator
	migrationHandler      *migrationHTTP.MigrationHandler

	migrationRepositoriesInit sync.Once
	encryptionMigratorInit    sync.Once
	migrationHandlerInit      sync.Once
}

// MigrationRepositories returns the account, transaction and profile repositories for the
// configured driver.
func (c *Container) MigrationRepositories() (
	migrationUseCase.AccountRepository,
	migrationUseCase.TransactionRepository,
	migrationUseCase.ProfileRepository,
	error,
) {
	err := c.once(&c.migrationRepositoriesInit, "migrationRepositories", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for migration repositories: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			c.accountRepository = migrationRepository.NewMySQLAccountRepository(db)
			c.transactionRepository = migrationRepository.NewMySQLTransactionRepository(db)
			c.profileRepository = migrationRepository.NewMySQLProfileRepository(db)
		case database.DriverPostgres:
			c.accountRepository = migrationRepository.NewPostgreSQLAccountRepository(db)
			c.transactionRepository = migrationRepository.NewPostgreSQLTransactionRepository(db)
			c.profileRepository = migrationRepository.NewPostgreSQLProfileRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return c.accountRepository, c.transactionRepository, c.profileRepository, nil
}

// EncryptionMigrator returns the shared migrator used by the HTTP API. It reports no
// progress.
func (c *Container) EncryptionMigrator() (migrationUseCase.EncryptionMigrator, error) {
	err := c.once(&c.encryptionMigratorInit, "encryptionMigrator", func() (err error) {
		c.encryptionMigrator, err = c.EncryptionMigratorWithProgress(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.encryptionMigrator, nil
}

// EncryptionMigratorWithProgress builds a new migrator that reports every processed row
// to progress. The CLI uses it to print per-record progress.
func (c *Container) EncryptionMigratorWithProgress(
	progress migrationUseCase.ProgressFunc,
) (migrationUseCase.EncryptionMigrator, error) {
	encryption, err := c.EncryptionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get encryption use case for migrator: %w", err)
	}

	accounts, transactions, profiles, err := c.MigrationRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for migrator: %w", err)
	}

	auditLogger, err := c.AuditLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit logger for migrator: %w", err)
	}

	baseMigrator := migrationUseCase.NewEncryptionMigrator(
		encryption,
		accounts,
		transactions,
		profiles,
		auditLogger,
		c.migrationConfig(),
		progress,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for migrator: %w", err)
		}
		migrationMetrics, err := c.MigrationMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get migration metrics for migrator: %w", err)
		}
		return migrationUseCase.NewEncryptionMigratorWithMetrics(baseMigrator, businessMetrics, migrationMetrics), nil
	}

	return baseMigrator, nil
}

// MigrationHandler returns the migration HTTP handler.
func (c *Container) MigrationHandler() (*migrationHTTP.MigrationHandler, error) {
	err := c.once(&c.migrationHandlerInit, "migrationHandler", func() error {
		migrator, err := c.EncryptionMigrator()
		if err != nil {
			return fmt.Errorf("failed to get encryption migrator for migration handler: %w", err)
		}
		c.migrationHandler = migrationHTTP.NewMigrationHandler(
			migrator,
			c.config.MigrationRequestTimeout,
			c.Logger(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.migrationHandler, nil
}

// migrationConfig maps MIGRATION_BATCH_DELAY_MS=0 to no pause between pages.
func (c *Container) migrationConfig() migrationUseCase.Config {
	delay := c.config.MigrationBatchDelay
	if delay == 0 {
		delay = -1
	}
	return migrationUseCase.Config{
		BatchSize:  c.config.MigrationBatchSize,
		BatchDelay: delay,
	}
}
