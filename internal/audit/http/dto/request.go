package dto

import (
	"errors"

	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	customValidation "github.com/allisson/finvault/internal/validation"
)

// Event types accepted by RecordAuditLogRequest. Each maps to one audit logger wrapper.
const (
	EventTransaction          = "transaction"
	EventBudget               = "budget"
	EventAccount              = "account"
	EventRecurringTransaction = "recurring_transaction"
	EventRecurringExecution   = "recurring_execution"
	EventBulkRecurring        = "bulk_recurring"
	EventSecurity             = "security_event"
	EventAuthentication       = "authentication"
)

// RecordAuditLogRequest is an audit event reported by a client service. Which fields are
// required depends on Type.
type RecordAuditLogRequest struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`

	// transaction, budget, account, recurring_transaction, authentication
	Action string `json:"action"`

	// transaction, budget, account, recurring_transaction
	RecordID string         `json:"record_id"`
	OldData  map[string]any `json:"old_data"`
	NewData  map[string]any `json:"new_data"`
	Context  map[string]any `json:"context"`

	// entity events and recurring_execution
	Amount *float64 `json:"amount"`

	// recurring_execution, authentication
	Success *bool `json:"success"`

	// recurring_execution
	RecurringTransactionID string `json:"recurring_transaction_id"`
	TransactionID          string `json:"transaction_id"`
	Error                  string `json:"error"`

	// bulk_recurring
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// security_event
	EventType string         `json:"event_type"`
	RiskLevel string         `json:"risk_level"`
	Details   map[string]any `json:"details"`

	// authentication
	Reason string `json:"reason"`
}

// IsEntityEvent reports whether the request describes a CRUD change.
func (r *RecordAuditLogRequest) IsEntityEvent() bool {
	switch r.Type {
	case EventTransaction, EventBudget, EventAccount, EventRecurringTransaction:
		return true
	}
	return false
}

// Validate checks the common fields and the fields required by Type.
func (r *RecordAuditLogRequest) Validate() error {
	entity := r.IsEntityEvent()

	return validation.ValidateStruct(r,
		validation.Field(&r.Type,
			validation.Required,
			validation.In(
				EventTransaction, EventBudget, EventAccount, EventRecurringTransaction,
				EventRecurringExecution, EventBulkRecurring, EventSecurity, EventAuthentication,
			),
		),
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 64),
		),
		validation.Field(&r.Action,
			validation.When(entity,
				validation.Required,
				validation.In(
					string(auditDomain.ActionCreate),
					string(auditDomain.ActionUpdate),
					string(auditDomain.ActionDelete),
					string(auditDomain.ActionView),
				),
			),
			validation.When(r.Type == EventAuthentication,
				validation.Required,
				validation.In(string(auditDomain.ActionLogin), string(auditDomain.ActionLogout)),
			),
		),
		validation.Field(&r.Success,
			validation.When(r.Type == EventRecurringExecution || r.Type == EventAuthentication, validation.NotNil),
		),
		validation.Field(&r.RecurringTransactionID,
			validation.When(r.Type == EventRecurringExecution, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&r.Processed, validation.Min(0)),
		validation.Field(&r.Succeeded, validation.Min(0)),
		validation.Field(&r.Failed,
			validation.Min(0),
			validation.When(r.Type == EventBulkRecurring, validation.By(r.bulkCountsAddUp)),
		),
		validation.Field(&r.EventType,
			validation.When(r.Type == EventSecurity, validation.Required, customValidation.NotBlank),
		),
		validation.Field(&r.RiskLevel,
			validation.In(
				string(auditDomain.RiskLow),
				string(auditDomain.RiskMedium),
				string(auditDomain.RiskHigh),
				string(auditDomain.RiskCritical),
			),
		),
	)
}

func (r *RecordAuditLogRequest) bulkCountsAddUp(any) error {
	if r.Succeeded+r.Failed > r.Processed {
		return errors.New("succeeded plus failed must not exceed processed")
	}
	return nil
}

// RecordAuditLogResponse returns the id of the stored entry.
type RecordAuditLogResponse struct {
	ID string `json:"id"`
}
