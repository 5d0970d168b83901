// Package repository persists the audit trail in PostgreSQL or MySQL. Writes go through
// the create_audit_log and log_encryption_operation stored routines.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
)

// marshalData returns nil for a nil map so the column stores NULL.
func marshalData(data map[string]any) (any, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func unmarshalData(raw []byte) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// buildFilter renders the WHERE clause for a family's audit log listing. placeholder
// returns the dialect's n-th bind parameter.
func buildFilter(
	familyID string,
	filter auditDomain.AuditLogFilter,
	placeholder func(n int) string,
) (string, []any) {
	args := []any{familyID}
	conditions := []string{"family_id = " + placeholder(1)}

	add := func(column, op string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s %s", column, op, placeholder(len(args))))
	}

	if filter.Action != "" {
		add("action", "=", string(filter.Action))
	}
	if filter.TableName != "" {
		add("table_name", "=", filter.TableName)
	}
	if filter.RiskLevel != "" {
		add("risk_level", "=", string(filter.RiskLevel))
	}
	if filter.CreatedAtFrom != nil {
		add("created_at", ">=", filter.CreatedAtFrom.UTC())
	}
	if filter.CreatedAtTo != nil {
		add("created_at", "<=", filter.CreatedAtTo.UTC())
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func postgresPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func mysqlPlaceholder(int) string {
	return "?"
}

// entryNullables holds the nullable and enum columns of an audit_logs row while scanning.
type entryNullables struct {
	action    string
	recordID  sql.NullString
	oldData   []byte
	newData   []byte
	opContext []byte
	ipAddress sql.NullString
	userAgent sql.NullString
	amount    sql.NullFloat64
	riskLevel string
}

func (f *entryNullables) apply(entry *auditDomain.AuditLogEntry) error {
	var err error
	entry.Action = auditDomain.Action(f.action)
	entry.RiskLevel = auditDomain.RiskLevel(f.riskLevel)
	entry.RecordID = stringPtr(f.recordID)
	entry.IPAddress = stringPtr(f.ipAddress)
	entry.UserAgent = stringPtr(f.userAgent)
	entry.Amount = floatPtr(f.amount)
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.OldData, err = unmarshalData(f.oldData); err != nil {
		return fmt.Errorf("failed to unmarshal old_data: %w", err)
	}
	if entry.NewData, err = unmarshalData(f.newData); err != nil {
		return fmt.Errorf("failed to unmarshal new_data: %w", err)
	}
	if entry.OperationContext, err = unmarshalData(f.opContext); err != nil {
		return fmt.Errorf("failed to unmarshal operation_context: %w", err)
	}
	return nil
}

func marshalEntryData(entry *auditDomain.AuditLogEntry) (oldData, newData, opContext any, err error) {
	if oldData, err = marshalData(entry.OldData); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal old_data: %w", err)
	}
	if newData, err = marshalData(entry.NewData); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal new_data: %w", err)
	}
	if opContext, err = marshalData(entry.OperationContext); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal operation_context: %w", err)
	}
	return oldData, newData, opContext, nil
}
