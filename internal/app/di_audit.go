package app

import (
	"fmt"
	"sync"

	auditHTTP "github.com/allisson/finvault/internal/audit/http"
	auditRepository "github.com/allisson/finvault/internal/audit/repository"
	auditService "github.com/allisson/finvault/internal/audit/service"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
	"github.com/allisson/finvault/internal/database"
)

type auditState struct {
	auditLogRepository auditUseCase.AuditLogRepository
	auditLogger        auditUseCase.AuditLogger
	auditHandler       *auditHTTP.AuditHandler

	auditLogRepositoryInit sync.Once
	auditLoggerInit        sync.Once
	auditHandlerInit       sync.Once
}

// AuditLogRepository returns the audit log repository for the configured driver.
func (c *Container) AuditLogRepository() (auditUseCase.AuditLogRepository, error) {
	err := c.once(&c.auditLogRepositoryInit, "auditLogRepository", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for audit log repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			c.auditLogRepository = auditRepository.NewMySQLAuditLogRepository(db)
		case database.DriverPostgres:
			c.auditLogRepository = auditRepository.NewPostgreSQLAuditLogRepository(db)
		default:
			return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogRepository, nil
}

// AuditLogger returns the audit logger. Entries are signed with a key derived from the
// master key.
func (c *Container) AuditLogger() (auditUseCase.AuditLogger, error) {
	err := c.once(&c.auditLoggerInit, "auditLogger", func() (err error) {
		c.auditLogger, err = c.initAuditLogger()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.auditLogger, nil
}

// AuditHandler returns the audit HTTP handler.
func (c *Container) AuditHandler() (*auditHTTP.AuditHandler, error) {
	err := c.once(&c.auditHandlerInit, "auditHandler", func() error {
		auditLogger, err := c.AuditLogger()
		if err != nil {
			return fmt.Errorf("failed to get audit logger for audit handler: %w", err)
		}
		c.auditHandler = auditHTTP.NewAuditHandler(auditLogger, c.Logger())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.auditHandler, nil
}

func (c *Container) initAuditLogger() (auditUseCase.AuditLogger, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit logger: %w", err)
	}

	repo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit logger: %w", err)
	}

	masterKey, err := c.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key for audit logger: %w", err)
	}

	baseLogger := auditUseCase.NewAuditLogger(
		txManager,
		repo,
		auditService.NewAuditSigner(),
		masterKey,
		c.config.AuditHighAmountThreshold,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for audit logger: %w", err)
		}
		return auditUseCase.NewAuditLoggerWithMetrics(baseLogger, businessMetrics), nil
	}

	return baseLogger, nil
}
