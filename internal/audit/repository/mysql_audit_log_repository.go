package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
)

const mysqlEntryColumns = `id, family_id, user_id, action, table_name, record_id, old_data, new_data,
	operation_context, ip_address, user_agent, amount, risk_level, signature, created_at`

// MySQLAuditLogRepository implements audit persistence for MySQL.
// Uses BINARY(16) for UUID storage and positional CALL for the stored procedures.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create persists entry through the create_audit_log procedure.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	querier := database.GetTx(ctx, m.db)

	id, err := entry.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	oldData, newData, opContext, err := marshalEntryData(entry)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(
		ctx,
		"CALL create_audit_log(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id,
		entry.FamilyID,
		entry.UserID,
		string(entry.Action),
		entry.TableName,
		nullableString(entry.RecordID),
		oldData,
		newData,
		opContext,
		nullableString(entry.IPAddress),
		nullableString(entry.UserAgent),
		nullableFloat(entry.Amount),
		string(entry.RiskLevel),
		nullableBytes(entry.Signature),
		entry.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistence(err, "failed to create audit log")
	}
	return nil
}

// CreateSensitiveOperation inserts an approval queue row.
func (m *MySQLAuditLogRepository) CreateSensitiveOperation(
	ctx context.Context,
	op *auditDomain.SensitiveOperation,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := op.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sensitive operation id")
	}
	auditLogID, err := op.AuditLogID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal sensitive operation audit_log_id")
	}

	query := `INSERT INTO sensitive_operations_log
		(id, audit_log_id, family_id, user_id, operation_type, risk_level, requires_approval, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		auditLogID,
		op.FamilyID,
		op.UserID,
		op.OperationType,
		string(op.RiskLevel),
		op.RequiresApproval,
		op.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistence(err, "failed to create sensitive operation")
	}
	return nil
}

// CreateEncryptionOperation persists op through the log_encryption_operation procedure.
func (m *MySQLAuditLogRepository) CreateEncryptionOperation(
	ctx context.Context,
	op *auditDomain.EncryptionOperation,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := op.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal encryption operation id")
	}

	_, err = querier.ExecContext(
		ctx,
		"CALL log_encryption_operation(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id,
		op.FamilyID,
		op.UserID,
		op.OperationType,
		op.TableName,
		nullableString(op.RecordID),
		op.Success,
		nullableString(op.ErrorMessage),
		op.CreatedAt,
	)
	if err != nil {
		return apperrors.Persistence(err, "failed to log encryption operation")
	}
	return nil
}

// List returns a family's entries newest first.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, m.db)

	where, args := buildFilter(familyID, filter, mysqlPlaceholder)
	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs%s ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		mysqlEntryColumns, where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list audit logs")
	}
	return collectMySQLEntries(rows)
}

// ListAfter returns up to limit entries with id greater than afterID in id order.
// BINARY(16) UUIDv7 values compare in creation order.
func (m *MySQLAuditLogRepository) ListAfter(
	ctx context.Context,
	familyID string,
	afterID uuid.UUID,
	limit int,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, m.db)

	after, err := afterID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal cursor id")
	}

	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs WHERE family_id = ? AND id > ? ORDER BY id ASC LIMIT ?",
		mysqlEntryColumns,
	)
	rows, err := querier.QueryContext(ctx, query, familyID, after, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list audit logs")
	}
	return collectMySQLEntries(rows)
}

// GetSecurityDashboard reads the family's row from the security_dashboard view.
// Returns ErrDashboardNotFound when the family has no row.
func (m *MySQLAuditLogRepository) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT family_id, total_events_24h, total_events_7d, high_risk_events_24h,
		critical_events_7d, failed_logins_24h, pending_approvals, average_amount, last_event_at
		FROM security_dashboard WHERE family_id = ?`

	var dashboard auditDomain.SecurityDashboard
	var averageAmount sql.NullFloat64
	var lastEventAt sql.NullTime
	err := querier.QueryRowContext(ctx, query, familyID).Scan(
		&dashboard.FamilyID,
		&dashboard.TotalEvents24h,
		&dashboard.TotalEvents7d,
		&dashboard.HighRiskEvents24h,
		&dashboard.CriticalEvents7d,
		&dashboard.FailedLogins24h,
		&dashboard.PendingApprovals,
		&averageAmount,
		&lastEventAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auditDomain.ErrDashboardNotFound
		}
		return nil, apperrors.Persistence(err, "failed to get security dashboard")
	}
	dashboard.AverageAmount = averageAmount.Float64
	dashboard.LastEventAt = timePtr(lastEventAt)
	return &dashboard, nil
}

// ListPendingApprovals returns unapproved rows that require approval, newest first.
func (m *MySQLAuditLogRepository) ListPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, audit_log_id, family_id, user_id, operation_type, risk_level,
		requires_approval, approved_by, approved_at, created_at
		FROM sensitive_operations_log
		WHERE family_id = ? AND requires_approval = TRUE AND approved_at IS NULL
		ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending approvals")
	}
	defer func() {
		_ = rows.Close()
	}()

	ops := make([]*auditDomain.SensitiveOperation, 0)
	for rows.Next() {
		var op auditDomain.SensitiveOperation
		var riskLevel string
		var approvedBy sql.NullString
		var approvedAt sql.NullTime
		if err := rows.Scan(
			&op.ID,
			&op.AuditLogID,
			&op.FamilyID,
			&op.UserID,
			&op.OperationType,
			&riskLevel,
			&op.RequiresApproval,
			&approvedBy,
			&approvedAt,
			&op.CreatedAt,
		); err != nil {
			return nil, apperrors.Persistence(err, "failed to scan sensitive operation")
		}
		op.RiskLevel = auditDomain.RiskLevel(riskLevel)
		op.ApprovedBy = stringPtr(approvedBy)
		op.ApprovedAt = timePtr(approvedAt)
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "failed to iterate sensitive operations")
	}
	return ops, nil
}

func collectMySQLEntries(rows *sql.Rows) ([]*auditDomain.AuditLogEntry, error) {
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLogEntry, 0)
	for rows.Next() {
		var entry auditDomain.AuditLogEntry
		var id []byte
		var fields entryNullables
		if err := rows.Scan(
			&id,
			&entry.FamilyID,
			&entry.UserID,
			&fields.action,
			&entry.TableName,
			&fields.recordID,
			&fields.oldData,
			&fields.newData,
			&fields.opContext,
			&fields.ipAddress,
			&fields.userAgent,
			&fields.amount,
			&fields.riskLevel,
			&entry.Signature,
			&entry.CreatedAt,
		); err != nil {
			return nil, apperrors.Persistence(err, "failed to scan audit log")
		}
		if err := entry.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if err := fields.apply(&entry); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "failed to iterate audit logs")
	}
	return entries, nil
}

// NewMySQLAuditLogRepository creates a new MySQL audit repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
