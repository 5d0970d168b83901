package usecase

import (
	"context"
	"maps"
	"math"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
)

// Table names written by the entity wrappers.
const (
	TableTransactions          = "transactions"
	TableBudgets               = "budgets"
	TableFinancialAccounts     = "financial_accounts"
	TableRecurringTransactions = "recurring_transactions"
	TableSecurityEvents        = "security_events"
	TableAuthEvents            = "auth_events"
)

// EntityEvent describes a CRUD change to a financial entity.
type EntityEvent struct {
	FamilyID  string
	UserID    string
	Action    auditDomain.Action
	RecordID  string
	OldData   map[string]any
	NewData   map[string]any
	Amount    *float64
	IPAddress *string
	UserAgent *string
	// Context is merged into the entry's operation_context.
	Context map[string]any
}

// RecurringExecution describes one run of a recurring transaction.
type RecurringExecution struct {
	FamilyID               string
	UserID                 string
	RecurringTransactionID string
	TransactionID          string
	Amount                 *float64
	Success                bool
	Error                  string
}

// BulkRecurringRun summarises a scheduled pass over due recurring transactions.
type BulkRecurringRun struct {
	FamilyID  string
	UserID    string
	Processed int
	Succeeded int
	Failed    int
}

// SecurityEvent is a security-relevant occurrence such as a permission change.
// An empty RiskLevel defaults to MEDIUM.
type SecurityEvent struct {
	FamilyID  string
	UserID    string
	EventType string
	RiskLevel auditDomain.RiskLevel
	Details   map[string]any
	IPAddress *string
	UserAgent *string
}

// AuthenticationEvent is a LOGIN or LOGOUT attempt.
type AuthenticationEvent struct {
	FamilyID  string
	UserID    string
	Action    auditDomain.Action
	Success   bool
	Reason    string
	IPAddress *string
	UserAgent *string
}

// amountRisk returns HIGH when amount reaches the threshold.
func (a *auditLogger) amountRisk(amount *float64) auditDomain.RiskLevel {
	if amount != nil && math.Abs(*amount) >= a.highAmountThreshold {
		return auditDomain.RiskHigh
	}
	return auditDomain.RiskLow
}

func (a *auditLogger) logEntity(
	ctx context.Context,
	event EntityEvent,
	tableName, entity string,
	deleteRisk auditDomain.RiskLevel,
) (uuid.UUID, bool) {
	risk := a.amountRisk(event.Amount)
	if event.Action == auditDomain.ActionDelete {
		risk = risk.AtLeast(deleteRisk)
	}

	opContext := make(map[string]any, len(event.Context)+1)
	maps.Copy(opContext, event.Context)
	opContext["operation"] = entity + "." + strings.ToLower(string(event.Action))

	return a.LogFinancialOperation(ctx, &auditDomain.AuditLogEntry{
		FamilyID:         event.FamilyID,
		UserID:           event.UserID,
		Action:           event.Action,
		TableName:        tableName,
		RecordID:         optional(event.RecordID),
		OldData:          event.OldData,
		NewData:          event.NewData,
		OperationContext: opContext,
		IPAddress:        event.IPAddress,
		UserAgent:        event.UserAgent,
		Amount:           event.Amount,
		RiskLevel:        risk,
	})
}

// LogTransaction audits a change to a transaction.
func (a *auditLogger) LogTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	return a.logEntity(ctx, event, TableTransactions, "transaction", auditDomain.RiskMedium)
}

// LogBudget audits a change to a budget.
func (a *auditLogger) LogBudget(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	return a.logEntity(ctx, event, TableBudgets, "budget", auditDomain.RiskMedium)
}

// LogAccount audits a change to a financial account. Deleting an account is HIGH risk.
func (a *auditLogger) LogAccount(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	return a.logEntity(ctx, event, TableFinancialAccounts, "account", auditDomain.RiskHigh)
}

// LogRecurringTransaction audits a change to a recurring transaction definition.
func (a *auditLogger) LogRecurringTransaction(ctx context.Context, event EntityEvent) (uuid.UUID, bool) {
	return a.logEntity(ctx, event, TableRecurringTransactions, "recurring_transaction", auditDomain.RiskMedium)
}

// LogRecurringTransactionExecution audits one execution. Failed executions are HIGH risk.
func (a *auditLogger) LogRecurringTransactionExecution(
	ctx context.Context,
	execution RecurringExecution,
) (uuid.UUID, bool) {
	risk := a.amountRisk(execution.Amount)
	if !execution.Success {
		risk = auditDomain.RiskHigh
	}

	opContext := map[string]any{
		"operation": "recurring_transaction.execute",
		"success":   execution.Success,
	}
	if execution.TransactionID != "" {
		opContext["transaction_id"] = execution.TransactionID
	}
	if execution.Error != "" {
		opContext["error"] = execution.Error
	}

	return a.LogFinancialOperation(ctx, &auditDomain.AuditLogEntry{
		FamilyID:         execution.FamilyID,
		UserID:           execution.UserID,
		Action:           auditDomain.ActionExecute,
		TableName:        TableRecurringTransactions,
		RecordID:         optional(execution.RecurringTransactionID),
		OperationContext: opContext,
		Amount:           execution.Amount,
		RiskLevel:        risk,
	})
}

// LogBulkRecurringProcessing audits a bulk run. Any failure raises the risk to MEDIUM,
// and HIGH when every item failed.
func (a *auditLogger) LogBulkRecurringProcessing(ctx context.Context, run BulkRecurringRun) (uuid.UUID, bool) {
	risk := auditDomain.RiskLow
	if run.Failed > 0 {
		risk = auditDomain.RiskMedium
		if run.Failed >= run.Processed {
			risk = auditDomain.RiskHigh
		}
	}

	return a.LogFinancialOperation(ctx, &auditDomain.AuditLogEntry{
		FamilyID:  run.FamilyID,
		UserID:    run.UserID,
		Action:    auditDomain.ActionBulkProcess,
		TableName: TableRecurringTransactions,
		OperationContext: map[string]any{
			"operation": "recurring_transaction.bulk_process",
			"processed": run.Processed,
			"succeeded": run.Succeeded,
			"failed":    run.Failed,
		},
		RiskLevel: risk,
	})
}

// LogSecurityEvent audits a security event.
func (a *auditLogger) LogSecurityEvent(ctx context.Context, event SecurityEvent) (uuid.UUID, bool) {
	risk := event.RiskLevel
	if risk == "" {
		risk = auditDomain.RiskMedium
	}

	opContext := make(map[string]any, len(event.Details)+1)
	maps.Copy(opContext, event.Details)
	opContext["event_type"] = event.EventType

	return a.LogFinancialOperation(ctx, &auditDomain.AuditLogEntry{
		FamilyID:         event.FamilyID,
		UserID:           event.UserID,
		Action:           auditDomain.ActionExecute,
		TableName:        TableSecurityEvents,
		OperationContext: opContext,
		IPAddress:        event.IPAddress,
		UserAgent:        event.UserAgent,
		RiskLevel:        risk,
	})
}

// LogAuthentication audits a login or logout. Failed logins are HIGH risk and are counted
// by the security dashboard.
func (a *auditLogger) LogAuthentication(ctx context.Context, event AuthenticationEvent) (uuid.UUID, bool) {
	if event.Action != auditDomain.ActionLogin && event.Action != auditDomain.ActionLogout {
		a.logger.Error("failed to write audit log",
			"family_id", event.FamilyID,
			"action", string(event.Action),
			"error", auditDomain.ErrInvalidEntry,
		)
		return uuid.Nil, false
	}

	risk := auditDomain.RiskLow
	if event.Action == auditDomain.ActionLogin && !event.Success {
		risk = auditDomain.RiskHigh
	}

	opContext := map[string]any{"success": event.Success}
	if event.Reason != "" {
		opContext["reason"] = event.Reason
	}

	return a.LogFinancialOperation(ctx, &auditDomain.AuditLogEntry{
		FamilyID:         event.FamilyID,
		UserID:           event.UserID,
		Action:           event.Action,
		TableName:        TableAuthEvents,
		OperationContext: opContext,
		IPAddress:        event.IPAddress,
		UserAgent:        event.UserAgent,
		RiskLevel:        risk,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
