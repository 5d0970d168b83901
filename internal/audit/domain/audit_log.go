// Package domain defines the audit trail entities: signed append-only log entries,
// approval-gated sensitive operations, encryption attempts and the per-family
// security dashboard.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is the kind of operation being audited.
type Action string

const (
	ActionCreate      Action = "CREATE"
	ActionUpdate      Action = "UPDATE"
	ActionDelete      Action = "DELETE"
	ActionView        Action = "VIEW"
	ActionLogin       Action = "LOGIN"
	ActionLogout      Action = "LOGOUT"
	ActionExecute     Action = "EXECUTE"
	ActionBulkProcess Action = "BULK_PROCESS"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionView,
		ActionLogin, ActionLogout, ActionExecute, ActionBulkProcess:
		return true
	}
	return false
}

// RiskLevel classifies an audit entry. HIGH and CRITICAL entries require approval.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	return r.rank() > 0
}

// RequiresApproval reports whether entries at this level are queued for approval.
func (r RiskLevel) RequiresApproval() bool {
	return r == RiskHigh || r == RiskCritical
}

// AtLeast returns the higher of r and min.
func (r RiskLevel) AtLeast(min RiskLevel) RiskLevel {
	if r.rank() < min.rank() {
		return min
	}
	return r
}

func (r RiskLevel) rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	}
	return 0
}

// AuditLogEntry is one append-only record of a sensitive operation. ID, CreatedAt and
// Signature are stamped by the logger; callers fill in the rest.
type AuditLogEntry struct {
	ID               uuid.UUID
	FamilyID         string
	UserID           string
	Action           Action
	TableName        string
	RecordID         *string
	OldData          map[string]any
	NewData          map[string]any
	OperationContext map[string]any
	IPAddress        *string
	UserAgent        *string
	Amount           *float64
	RiskLevel        RiskLevel
	Signature        []byte
	CreatedAt        time.Time
}

// IsSigned reports whether the entry carries an HMAC-SHA256 signature.
func (e *AuditLogEntry) IsSigned() bool {
	return len(e.Signature) == 32
}

// SensitiveOperation is the approval queue row created for HIGH and CRITICAL entries.
type SensitiveOperation struct {
	ID               uuid.UUID
	AuditLogID       uuid.UUID
	FamilyID         string
	UserID           string
	OperationType    string
	RiskLevel        RiskLevel
	RequiresApproval bool
	ApprovedBy       *string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
}

// EncryptionOperation records one encryption attempt, typically a migrated row.
type EncryptionOperation struct {
	ID            uuid.UUID
	FamilyID      string
	UserID        string
	OperationType string
	TableName     string
	RecordID      *string
	Success       bool
	ErrorMessage  *string
	CreatedAt     time.Time
}

// SecurityDashboard is the per-family aggregate read from the security_dashboard view.
// The zero value is the documented default for families without activity.
type SecurityDashboard struct {
	FamilyID          string
	TotalEvents24h    int64
	TotalEvents7d     int64
	HighRiskEvents24h int64
	CriticalEvents7d  int64
	FailedLogins24h   int64
	PendingApprovals  int64
	AverageAmount     float64
	LastEventAt       *time.Time
}

// VerificationReport summarises a signature check over a family's audit trail.
type VerificationReport struct {
	FamilyID   string
	Total      int
	Valid      int
	Invalid    int
	Unsigned   int
	InvalidIDs []uuid.UUID
}
