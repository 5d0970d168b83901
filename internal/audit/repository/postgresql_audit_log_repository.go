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

const postgresEntryColumns = `id, family_id, user_id, action, table_name, record_id, old_data, new_data,
	operation_context, ip_address, user_agent, amount, risk_level, signature, created_at`

// PostgreSQLAuditLogRepository implements audit persistence for PostgreSQL. Routines are
// called with named parameters.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create persists entry through create_audit_log.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, entry *auditDomain.AuditLogEntry) error {
	querier := database.GetTx(ctx, p.db)

	oldData, newData, opContext, err := marshalEntryData(entry)
	if err != nil {
		return err
	}

	query := `SELECT create_audit_log(
		p_id => $1, p_family_id => $2, p_user_id => $3, p_action => $4, p_table_name => $5,
		p_record_id => $6, p_old_data => $7::jsonb, p_new_data => $8::jsonb,
		p_operation_context => $9::jsonb, p_ip_address => $10, p_user_agent => $11,
		p_amount => $12, p_risk_level => $13, p_signature => $14, p_created_at => $15)`

	_, err = querier.ExecContext(
		ctx,
		query,
		entry.ID,
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
func (p *PostgreSQLAuditLogRepository) CreateSensitiveOperation(
	ctx context.Context,
	op *auditDomain.SensitiveOperation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sensitive_operations_log
		(id, audit_log_id, family_id, user_id, operation_type, risk_level, requires_approval, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		op.ID,
		op.AuditLogID,
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

// CreateEncryptionOperation persists op through log_encryption_operation.
func (p *PostgreSQLAuditLogRepository) CreateEncryptionOperation(
	ctx context.Context,
	op *auditDomain.EncryptionOperation,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT log_encryption_operation(
		p_id => $1, p_family_id => $2, p_user_id => $3, p_operation_type => $4,
		p_table_name => $5, p_record_id => $6, p_success => $7, p_error_message => $8,
		p_created_at => $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		op.ID,
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
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	where, args := buildFilter(familyID, filter, postgresPlaceholder)
	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		postgresEntryColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list audit logs")
	}
	return collectPostgresEntries(rows)
}

// ListAfter returns up to limit entries with id greater than afterID in id order. UUIDv7
// ids sort by creation time, so callers can page through the whole trail.
func (p *PostgreSQLAuditLogRepository) ListAfter(
	ctx context.Context,
	familyID string,
	afterID uuid.UUID,
	limit int,
) ([]*auditDomain.AuditLogEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs WHERE family_id = $1 AND id > $2 ORDER BY id ASC LIMIT $3",
		postgresEntryColumns,
	)
	rows, err := querier.QueryContext(ctx, query, familyID, afterID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list audit logs")
	}
	return collectPostgresEntries(rows)
}

// GetSecurityDashboard reads the family's row from the security_dashboard view.
// Returns ErrDashboardNotFound when the family has no row.
func (p *PostgreSQLAuditLogRepository) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT family_id, total_events_24h, total_events_7d, high_risk_events_24h,
		critical_events_7d, failed_logins_24h, pending_approvals, average_amount, last_event_at
		FROM security_dashboard WHERE family_id = $1`

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
func (p *PostgreSQLAuditLogRepository) ListPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, audit_log_id, family_id, user_id, operation_type, risk_level,
		requires_approval, approved_by, approved_at, created_at
		FROM sensitive_operations_log
		WHERE family_id = $1 AND requires_approval = TRUE AND approved_at IS NULL
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

func collectPostgresEntries(rows *sql.Rows) ([]*auditDomain.AuditLogEntry, error) {
	defer func() {
		_ = rows.Close()
	}()

	entries := make([]*auditDomain.AuditLogEntry, 0)
	for rows.Next() {
		var entry auditDomain.AuditLogEntry
		var fields entryNullables
		if err := rows.Scan(
			&entry.ID,
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

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
