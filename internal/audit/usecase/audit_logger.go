package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditService "github.com/allisson/finvault/internal/audit/service"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
)

// DefaultHighAmountThreshold is the amount at or above which entries are HIGH risk.
const DefaultHighAmountThreshold = 10000.0

// verifyBatchSize is the page size used when walking a family's trail.
const verifyBatchSize = 500

type auditLogger struct {
	txManager           database.TxManager
	repo                AuditLogRepository
	signer              auditService.AuditSigner
	masterKey           *cryptoDomain.MasterKey
	highAmountThreshold float64
	logger              *slog.Logger
	now                 func() time.Time
}

// NewAuditLogger creates an AuditLogger. Entries are signed with a key derived from
// masterKey; a nil masterKey stores them unsigned. A non-positive threshold falls back to
// DefaultHighAmountThreshold.
func NewAuditLogger(
	txManager database.TxManager,
	repo AuditLogRepository,
	signer auditService.AuditSigner,
	masterKey *cryptoDomain.MasterKey,
	highAmountThreshold float64,
	logger *slog.Logger,
) AuditLogger {
	if highAmountThreshold <= 0 {
		highAmountThreshold = DefaultHighAmountThreshold
	}
	return &auditLogger{
		txManager:           txManager,
		repo:                repo,
		signer:              signer,
		masterKey:           masterKey,
		highAmountThreshold: highAmountThreshold,
		logger:              logger,
		now:                 time.Now,
	}
}

// LogFinancialOperation validates, stamps, signs and persists a copy of entry. HIGH and
// CRITICAL entries also enter the approval queue in the same transaction.
func (a *auditLogger) LogFinancialOperation(
	ctx context.Context,
	entry *auditDomain.AuditLogEntry,
) (uuid.UUID, bool) {
	id, err := a.logFinancialOperation(ctx, entry)
	if err != nil {
		attrs := []any{slog.Any("error", err)}
		if entry != nil {
			attrs = append(attrs,
				slog.String("family_id", entry.FamilyID),
				slog.String("action", string(entry.Action)),
				slog.String("table_name", entry.TableName),
			)
		}
		a.logger.Error("failed to write audit log", attrs...)
		return uuid.Nil, false
	}
	return id, true
}

func (a *auditLogger) logFinancialOperation(ctx context.Context, entry *auditDomain.AuditLogEntry) (uuid.UUID, error) {
	if entry == nil {
		return uuid.Nil, auditDomain.ErrInvalidEntry
	}
	if err := validateEntry(entry); err != nil {
		return uuid.Nil, apperrors.Wrap(auditDomain.ErrInvalidEntry, err.Error())
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, "failed to generate audit log id")
	}

	stored := *entry
	stored.ID = id
	stored.Signature = nil
	// Stored timestamps have microsecond precision; truncate so signatures survive a round trip.
	stored.CreatedAt = a.now().UTC().Truncate(time.Microsecond)
	if stored.RiskLevel == "" {
		stored.RiskLevel = auditDomain.RiskLow
	}
	if stored.Amount != nil {
		rounded := math.Round(*stored.Amount*100) / 100
		stored.Amount = &rounded
	}

	if a.masterKey != nil {
		// A closed key fails here instead of signing with zeroed material.
		err := a.masterKey.Use(func(key []byte) error {
			signature, err := a.signer.Sign(key, &stored)
			if err != nil {
				return err
			}
			stored.Signature = signature
			return nil
		})
		if err != nil {
			return uuid.Nil, apperrors.Wrap(err, "failed to sign audit log")
		}
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.repo.Create(ctx, &stored); err != nil {
			return err
		}
		if !stored.RiskLevel.RequiresApproval() {
			return nil
		}

		opID, err := uuid.NewV7()
		if err != nil {
			return apperrors.Wrap(err, "failed to generate sensitive operation id")
		}
		return a.repo.CreateSensitiveOperation(ctx, &auditDomain.SensitiveOperation{
			ID:               opID,
			AuditLogID:       stored.ID,
			FamilyID:         stored.FamilyID,
			UserID:           stored.UserID,
			OperationType:    string(stored.Action),
			RiskLevel:        stored.RiskLevel,
			RequiresApproval: true,
			CreatedAt:        stored.CreatedAt,
		})
	})
	if err != nil {
		return uuid.Nil, err
	}
	return stored.ID, nil
}

func validateEntry(entry *auditDomain.AuditLogEntry) error {
	return validation.ValidateStruct(entry,
		validation.Field(&entry.FamilyID, validation.Required),
		validation.Field(&entry.UserID, validation.Required),
		validation.Field(&entry.TableName, validation.Required),
		validation.Field(&entry.Action, validation.Required, validation.By(func(any) error {
			if !entry.Action.Valid() {
				return validation.NewError("validation_action", "must be a known action")
			}
			return nil
		})),
		validation.Field(&entry.RiskLevel, validation.By(func(any) error {
			if entry.RiskLevel != "" && !entry.RiskLevel.Valid() {
				return validation.NewError("validation_risk_level", "must be a known risk level")
			}
			return nil
		})),
		validation.Field(&entry.Amount, validation.By(func(any) error {
			if entry.Amount != nil && (math.IsNaN(*entry.Amount) || math.IsInf(*entry.Amount, 0)) {
				return validation.NewError("validation_amount", "must be finite")
			}
			return nil
		})),
	)
}

// LogEncryptionOperation records an encryption attempt. Failures are logged and reported
// as false.
func (a *auditLogger) LogEncryptionOperation(ctx context.Context, op *auditDomain.EncryptionOperation) bool {
	if op == nil {
		a.logger.Error("failed to log encryption operation", slog.Any("error", auditDomain.ErrInvalidEntry))
		return false
	}

	stored := *op
	if stored.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			a.logger.Error("failed to log encryption operation", slog.Any("error", err))
			return false
		}
		stored.ID = id
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = a.now().UTC().Truncate(time.Microsecond)
	}

	if err := a.repo.CreateEncryptionOperation(ctx, &stored); err != nil {
		a.logger.Error("failed to log encryption operation",
			slog.String("family_id", stored.FamilyID),
			slog.String("table_name", stored.TableName),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// GetAuditLogs returns a family's entries newest first. The filter is validated and its
// page size normalised.
func (a *auditLogger) GetAuditLogs(
	ctx context.Context,
	familyID string,
	filter auditDomain.AuditLogFilter,
) ([]*auditDomain.AuditLogEntry, error) {
	if familyID == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "family id is required")
	}
	if err := filter.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}

	entries, err := a.repo.List(ctx, familyID, filter.Normalize())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	return entries, nil
}

// GetSecurityDashboard returns the family's aggregate, or an all-zero summary when the
// family has no audit activity yet.
func (a *auditLogger) GetSecurityDashboard(
	ctx context.Context,
	familyID string,
) (*auditDomain.SecurityDashboard, error) {
	dashboard, err := a.repo.GetSecurityDashboard(ctx, familyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &auditDomain.SecurityDashboard{FamilyID: familyID}, nil
		}
		return nil, apperrors.Wrap(err, "failed to get security dashboard")
	}
	return dashboard, nil
}

// GetPendingApprovals returns sensitive operations awaiting approval.
func (a *auditLogger) GetPendingApprovals(
	ctx context.Context,
	familyID string,
) ([]*auditDomain.SensitiveOperation, error) {
	ops, err := a.repo.ListPendingApprovals(ctx, familyID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending approvals")
	}
	return ops, nil
}

// VerifyAuditLogs recomputes the signature of every entry in the family's trail.
func (a *auditLogger) VerifyAuditLogs(
	ctx context.Context,
	familyID string,
) (*auditDomain.VerificationReport, error) {
	if a.masterKey == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}
	if err := a.masterKey.Use(func([]byte) error { return nil }); err != nil {
		return nil, err
	}

	report := &auditDomain.VerificationReport{FamilyID: familyID, InvalidIDs: make([]uuid.UUID, 0)}
	afterID := uuid.Nil
	for {
		entries, err := a.repo.ListAfter(ctx, familyID, afterID, verifyBatchSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list audit logs")
		}

		for _, entry := range entries {
			report.Total++
			switch {
			case !entry.IsSigned():
				report.Unsigned++
			case a.masterKey.Use(func(key []byte) error { return a.signer.Verify(key, entry) }) != nil:
				report.Invalid++
				report.InvalidIDs = append(report.InvalidIDs, entry.ID)
			default:
				report.Valid++
			}
		}

		if len(entries) < verifyBatchSize {
			return report, nil
		}
		afterID = entries[len(entries)-1].ID
	}
}
