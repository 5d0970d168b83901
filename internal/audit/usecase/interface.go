// Package usecase implements the best-effort, tamper-evident audit logger and its read
// paths.
package usecase

import (
	"context"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
)

// AuditLogRepository persists the append-only audit trail.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error
	CreateSensitiveOperation(ctx context.Context, op *auditDomain.SensitiveOperation) error
	CreateEncryptionOperation(ctx context.Context, op *auditDomain.EncryptionOperation) error
	List(
		ctx context.Context,
		familyID string,
		filter auditDomain.AuditLogFilter,
	) ([]*auditDomain.AuditLogEntry, error)
	ListAfter(
		ctx context.Context,
		familyID string,
		afterID uuid.UUID,
		limit int,
	) ([]*auditDomain.AuditLogEntry, error)
	GetSecurityDashboard(ctx context.Context, familyID string) (*auditDomain.SecurityDashboard, error)
	ListPendingApprovals(ctx context.Context, familyID string) ([]*auditDomain.SensitiveOperation, error)
}

// AuditLogger records sensitive operations. Write methods never return errors: failures
// are logged and reported as (uuid.Nil, false) so auditing never aborts the audited
// operation.
type AuditLogger interface {
	LogFinancialOperation(ctx context.Context, entry *auditDomain.AuditLogEntry) (uuid.UUID, bool)

	LogTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool)
	LogBudget(ctx context.Context, event EntityEvent) (uuid.UUID, bool)
	LogAccount(ctx context.Context, event EntityEvent) (uuid.UUID, bool)
	LogRecurringTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool)
	LogRecurringTransactionExecution(ctx context.Context, execution RecurringExecution) (uuid.UUID, bool)
	LogBulkRecurringProcessing(ctx context.Context, run BulkRecurringRun) (uuid.UUID, bool)
	LogSecurityEvent(ctx context.Context, event SecurityEvent) (uuid.UUID, bool)
	LogAuthentication(ctx context.Context, event AuthenticationEvent) (uuid.UUID, bool)

	LogEncryptionOperation(ctx context.Context, op *auditDomain.EncryptionOperation) bool

	GetAuditLogs(
		ctx context.Context,
		familyID string,
		filter auditDomain.AuditLogFilter,
	) ([]*auditDomain.AuditLogEntry, error)
	GetSecurityDashboard(ctx context.Context, familyID string) (*auditDomain.SecurityDashboard, error)
	GetPendingApprovals(ctx context.Context, familyID string) ([]*auditDomain.SensitiveOperation, error)
	VerifyAuditLogs(ctx context.Context, familyID string) (*auditDomain.VerificationReport, error)
}
