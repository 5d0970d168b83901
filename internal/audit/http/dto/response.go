// Package dto provides data transfer objects for the audit HTTP API.
package dto

import (
	"encoding/hex"
	"time"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
)

// AuditLogResponse represents an audit entry in API responses.
type AuditLogResponse struct {
	ID               string         `json:"id"`
	FamilyID         string         `json:"family_id"`
	UserID           string         `json:"user_id"`
	Action           string         `json:"action"`
	TableName        string         `json:"table_name"`
	RecordID         *string        `json:"record_id,omitempty"`
	OldData          map[string]any `json:"old_data,omitempty"`
	NewData          map[string]any `json:"new_data,omitempty"`
	OperationContext map[string]any `json:"operation_context,omitempty"`
	IPAddress        *string        `json:"ip_address,omitempty"`
	UserAgent        *string        `json:"user_agent,omitempty"`
	Amount           *float64       `json:"amount,omitempty"`
	RiskLevel        string         `json:"risk_level"`
	Signature        string         `json:"signature,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ListAuditLogsResponse represents a page of audit entries.
type ListAuditLogsResponse struct {
	Data []AuditLogResponse `json:"data"`
}

// MapAuditLogToResponse converts a domain entry to an API response.
func MapAuditLogToResponse(entry *auditDomain.AuditLogEntry) AuditLogResponse {
	resp := AuditLogResponse{
		ID:               entry.ID.String(),
		FamilyID:         entry.FamilyID,
		UserID:           entry.UserID,
		Action:           string(entry.Action),
		TableName:        entry.TableName,
		RecordID:         entry.RecordID,
		OldData:          entry.OldData,
		NewData:          entry.NewData,
		OperationContext: entry.OperationContext,
		IPAddress:        entry.IPAddress,
		UserAgent:        entry.UserAgent,
		Amount:           entry.Amount,
		RiskLevel:        string(entry.RiskLevel),
		CreatedAt:        entry.CreatedAt,
	}
	if entry.IsSigned() {
		resp.Signature = hex.EncodeToString(entry.Signature)
	}
	return resp
}

// MapAuditLogsToListResponse converts domain entries to a list response.
func MapAuditLogsToListResponse(entries []*auditDomain.AuditLogEntry) ListAuditLogsResponse {
	data := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, MapAuditLogToResponse(entry))
	}
	return ListAuditLogsResponse{Data: data}
}

// SecurityDashboardResponse represents a family's security summary.
type SecurityDashboardResponse struct {
	FamilyID          string     `json:"family_id"`
	TotalEvents24h    int64      `json:"total_events_24h"`
	TotalEvents7d     int64      `json:"total_events_7d"`
	HighRiskEvents24h int64      `json:"high_risk_events_24h"`
	CriticalEvents7d  int64      `json:"critical_events_7d"`
	FailedLogins24h   int64      `json:"failed_logins_24h"`
	PendingApprovals  int64      `json:"pending_approvals"`
	AverageAmount     float64    `json:"average_amount"`
	LastEventAt       *time.Time `json:"last_event_at"`
}

// MapSecurityDashboardToResponse converts a domain dashboard to an API response.
func MapSecurityDashboardToResponse(d *auditDomain.SecurityDashboard) SecurityDashboardResponse {
	return SecurityDashboardResponse{
		FamilyID:          d.FamilyID,
		TotalEvents24h:    d.TotalEvents24h,
		TotalEvents7d:     d.TotalEvents7d,
		HighRiskEvents24h: d.HighRiskEvents24h,
		CriticalEvents7d:  d.CriticalEvents7d,
		FailedLogins24h:   d.FailedLogins24h,
		PendingApprovals:  d.PendingApprovals,
		AverageAmount:     d.AverageAmount,
		LastEventAt:       d.LastEventAt,
	}
}

// PendingApprovalResponse represents a sensitive operation awaiting approval.
type PendingApprovalResponse struct {
	ID            string    `json:"id"`
	AuditLogID    string    `json:"audit_log_id"`
	UserID        string    `json:"user_id"`
	OperationType string    `json:"operation_type"`
	RiskLevel     string    `json:"risk_level"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListPendingApprovalsResponse represents the approval queue of a family.
type ListPendingApprovalsResponse struct {
	Data []PendingApprovalResponse `json:"data"`
}

// MapPendingApprovalsToListResponse converts domain operations to a list response.
func MapPendingApprovalsToListResponse(ops []*auditDomain.SensitiveOperation) ListPendingApprovalsResponse {
	data := make([]PendingApprovalResponse, 0, len(ops))
	for _, op := range ops {
		data = append(data, PendingApprovalResponse{
			ID:            op.ID.String(),
			AuditLogID:    op.AuditLogID.String(),
			UserID:        op.UserID,
			OperationType: op.OperationType,
			RiskLevel:     string(op.RiskLevel),
			CreatedAt:     op.CreatedAt,
		})
	}
	return ListPendingApprovalsResponse{Data: data}
}
