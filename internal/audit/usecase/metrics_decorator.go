package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	"github.com/allisson/finvault/internal/metrics"
)

const metricsDomain = "audit"

// auditLoggerWithMetrics decorates AuditLogger with metrics instrumentation. Write
// methods report "error" when the entry was not persisted.
type auditLoggerWithMetrics struct {
	next    AuditLogger
	metrics metrics.BusinessMetrics
}

// NewAuditLoggerWithMetrics wraps an AuditLogger with metrics recording.
func NewAuditLoggerWithMetrics(logger AuditLogger, m metrics.BusinessMetrics) AuditLogger {
	return &auditLoggerWithMetrics{
		next:    logger,
		metrics: m,
	}
}

func (a *auditLoggerWithMetrics) record(ctx context.Context, operation string, start time.Time, ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	a.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (a *auditLoggerWithMetrics) LogFinancialOperation(
	ctx context.Context,
	entry *auditDomain.AuditLogEntry,
) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogFinancialOperation(ctx, entry)
	a.record(ctx, "financial_operation_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogTransaction(ctx, event)
	a.record(ctx, "transaction_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogBudget(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogBudget(ctx, event)
	a.record(ctx, "budget_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogAccount(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogAccount(ctx, event)
	a.record(ctx, "account_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogRecurringTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogRecurringTransaction(ctx, event)
	a.record(ctx, "recurring_transaction_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogRecurringTransactionExecution(
	ctx context.Context,
	execution RecurringExecution,
) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogRecurringTransactionExecution(ctx, execution)
	a.record(ctx, "recurring_execution_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogBulkRecurringProcessing(
	ctx context.Context,
	run BulkRecurringRun,
) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogBulkRecurringProcessing(ctx, run)
	a.record(ctx, "bulk_recurring_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogSecurityEvent(ctx context.Context, event SecurityEvent) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogSecurityEvent(ctx, event)
	a.record(ctx, "security_event_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogAuthentication(
	ctx context.Context,
	event AuthenticationEvent,
) (uuid.UUID, bool) {
	start := time.Now()
	id, ok := a.next.LogAuthentication(ctx, event)
	a.record(ctx, "authentication_log", start, ok)
	return id, ok
}

func (a *auditLoggerWithMetrics) LogEncryptionOperation(
	ctx context.Context,
	op *auditDomain.EncryptionOperation,
) bool {
	start := time.Now()
	ok := a.next.LogEncryptionOperation(ctx, op)
	a.record(ctx, "encryption_operation_log", start, ok)
	return ok
}

func (a *auditLoggerWithMetrics) GetAuditLogs(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	start := time.Now()
	entries, err := a.next.GetAuditLogs(ctx, familyID, filter)
	a.record(ctx, "audit_logs_list", start, err == nil)
	return entries, err
}

func (a *auditLoggerWithMetrics) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	start := time.Now()
	dashboard, err := a.next.GetSecurityDashboard(ctx, familyID)
	a.record(ctx, "security_dashboard_get", start, err == nil)
	return dashboard, err
}

func (a *auditLoggerWithMetrics) GetPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	start := time.Now()
	ops, err := a.next.GetPendingApprovals(ctx, familyID)
	a.record(ctx, "pending_approvals_list", start, err == nil)
	return ops, err
}

func (a *auditLoggerWithMetrics) VerifyAuditLogs(
	ctx context.Context,
	familyID string,
) (*auditDomain.VerificationReport, error) {
	start := time.Now()
	report, err := a.next.VerifyAuditLogs(ctx, familyID)
	a.record(ctx, "audit_logs_verify", start, err == nil)
	return report, err
}
