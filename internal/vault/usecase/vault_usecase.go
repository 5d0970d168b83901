package usecase

import (
	"context"
	"log/slog"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/finvault/internal/crypto/usecase"
	apperrors "github.com/allisson/finvault/internal/errors"
)

// Security event types written by the vault.
const (
	EventDecryptionFailure   = "decryption_failure"
	EventPIIAccess           = "pii_access"
	EventBankAccountMismatch = "bank_account_verification_failed"
)

// dataTables maps a data type to the table recorded in encryption_operations_log.
var dataTables = map[cryptoDomain.DataType]string{
	cryptoDomain.DataTypeFinancialAmount: auditUseCase.TableTransactions,
	cryptoDomain.DataTypeBankAccount:     "bank_accounts",
	cryptoDomain.DataTypeUserPII:         "profiles",
	cryptoDomain.DataTypeSensitiveData:   "sensitive_data",
	cryptoDomain.DataTypeAmount:          auditUseCase.TableTransactions,
}

type vaultUseCase struct {
	encryption  cryptoUseCase.EncryptionUseCase
	salts       UserSaltReader
	auditLogger auditUseCase.AuditLogger
	logger      *slog.Logger
}

// NewVaultUseCase creates a VaultUseCase.
func NewVaultUseCase(
	encryption cryptoUseCase.EncryptionUseCase,
	salts UserSaltReader,
	auditLogger auditUseCase.AuditLogger,
	logger *slog.Logger,
) VaultUseCase {
	return &vaultUseCase{
		encryption:  encryption,
		salts:       salts,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

func (v *vaultUseCase) EncryptFinancialAmount(
	ctx context.Context,
	actor Actor,
	amount float64,
	currency string,
) (envelope *cryptoDomain.FinancialAmountEnvelope, err error) {
	defer func() { v.record(ctx, actor, "encrypt", cryptoDomain.DataTypeFinancialAmount, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		envelope, err = v.encryption.EncryptFinancialAmount(ctx, amount, currency, key)
		return err
	})
	return envelope, err
}

func (v *vaultUseCase) DecryptFinancialAmount(
	ctx context.Context,
	actor Actor,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) (record *cryptoDomain.FinancialAmount, err error) {
	defer func() { v.record(ctx, actor, "decrypt", cryptoDomain.DataTypeFinancialAmount, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		record, err = v.encryption.DecryptFinancialAmount(ctx, envelope, key)
		return err
	})
	return record, err
}

func (v *vaultUseCase) EncryptBankAccount(
	ctx context.Context,
	actor Actor,
	credentials *cryptoDomain.BankAccountCredentials,
) (envelope *cryptoDomain.BankAccountEnvelope, err error) {
	defer func() { v.record(ctx, actor, "encrypt", cryptoDomain.DataTypeBankAccount, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		envelope, err = v.encryption.EncryptBankAccountData(ctx, credentials, key)
		return err
	})
	return envelope, err
}

func (v *vaultUseCase) DecryptBankAccount(
	ctx context.Context,
	actor Actor,
	envelope *cryptoDomain.BankAccountEnvelope,
) (data *cryptoDomain.BankAccountData, err error) {
	defer func() { v.record(ctx, actor, "decrypt", cryptoDomain.DataTypeBankAccount, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		data, err = v.encryption.DecryptBankAccountData(ctx, envelope, key)
		return err
	})
	return data, err
}

// VerifyBankAccountNumbers needs no family key: the hashes are salted per value, not per
// family. A mismatch is audited as a MEDIUM security event.
func (v *vaultUseCase) VerifyBankAccountNumbers(
	ctx context.Context,
	actor Actor,
	accountNumber, routingNumber string,
	envelope *cryptoDomain.BankAccountEnvelope,
) bool {
	if envelope == nil {
		return false
	}

	match := v.encryption.VerifySensitiveDataHash(ctx, accountNumber, envelope.AccountNumberHash)
	if match && routingNumber != "" {
		match = v.encryption.VerifySensitiveDataHash(ctx, routingNumber, envelope.RoutingNumberHash)
	}

	if !match {
		v.auditLogger.LogSecurityEvent(ctx, auditUseCase.SecurityEvent{
			FamilyID:  actor.FamilyID,
			UserID:    actor.UserID,
			EventType: EventBankAccountMismatch,
			RiskLevel: auditDomain.RiskMedium,
			Details:   map[string]any{"last_four": envelope.LastFour},
			IPAddress: actor.IPAddress,
			UserAgent: actor.UserAgent,
		})
	}
	return match
}

func (v *vaultUseCase) EncryptUserPII(
	ctx context.Context,
	actor Actor,
	pii *cryptoDomain.UserPII,
) (envelope *cryptoDomain.UserPIIEnvelope, err error) {
	defer func() { v.record(ctx, actor, "encrypt", cryptoDomain.DataTypeUserPII, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		envelope, err = v.encryption.EncryptUserPII(ctx, pii, key)
		return err
	})
	return envelope, err
}

// DecryptUserPII also records every successful read as a pii_access security event.
func (v *vaultUseCase) DecryptUserPII(
	ctx context.Context,
	actor Actor,
	envelope *cryptoDomain.UserPIIEnvelope,
) (pii *cryptoDomain.UserPII, err error) {
	defer func() { v.record(ctx, actor, "decrypt", cryptoDomain.DataTypeUserPII, err) }()

	err = v.withFamilyKey(ctx, actor, func(key cryptoDomain.FamilyKey) (err error) {
		pii, err = v.encryption.DecryptUserPII(ctx, envelope, key)
		return err
	})
	if err != nil {
		return nil, err
	}

	v.auditLogger.LogSecurityEvent(ctx, auditUseCase.SecurityEvent{
		FamilyID:  actor.FamilyID,
		UserID:    actor.UserID,
		EventType: EventPIIAccess,
		RiskLevel: auditDomain.RiskMedium,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})
	return pii, nil
}

func (v *vaultUseCase) EncryptSensitiveData(
	ctx context.Context,
	actor Actor,
	plaintext string,
) (blob *cryptoDomain.EncryptedBlob, err error) {
	defer func() { v.record(ctx, actor, "encrypt", cryptoDomain.DataTypeSensitiveData, err) }()
	return v.encryption.EncryptSensitiveData(ctx, plaintext)
}

func (v *vaultUseCase) DecryptSensitiveData(
	ctx context.Context,
	actor Actor,
	blob *cryptoDomain.EncryptedBlob,
) (plaintext string, err error) {
	defer func() { v.record(ctx, actor, "decrypt", cryptoDomain.DataTypeSensitiveData, err) }()
	return v.encryption.DecryptSensitiveData(ctx, blob)
}

func (v *vaultUseCase) EncryptAmount(
	ctx context.Context,
	actor Actor,
	amount float64,
) (blob *cryptoDomain.EncryptedBlob, err error) {
	defer func() { v.record(ctx, actor, "encrypt", cryptoDomain.DataTypeAmount, err) }()
	return v.encryption.EncryptAmount(ctx, amount)
}

func (v *vaultUseCase) DecryptAmount(
	ctx context.Context,
	actor Actor,
	blob *cryptoDomain.EncryptedBlob,
) (amount float64, err error) {
	defer func() { v.record(ctx, actor, "decrypt", cryptoDomain.DataTypeAmount, err) }()
	return v.encryption.DecryptAmount(ctx, blob)
}

func (v *vaultUseCase) HashSensitiveData(ctx context.Context, data string) (string, error) {
	return v.encryption.HashSensitiveData(ctx, data)
}

func (v *vaultUseCase) VerifySensitiveDataHash(ctx context.Context, data, stored string) bool {
	return v.encryption.VerifySensitiveDataHash(ctx, data, stored)
}

// withFamilyKey derives the actor's family key, runs fn with it and zeroes it afterwards.
func (v *vaultUseCase) withFamilyKey(
	ctx context.Context,
	actor Actor,
	fn func(key cryptoDomain.FamilyKey) error,
) error {
	salt, err := v.salts.GetUserSalt(ctx, actor.FamilyID, actor.UserID)
	if err != nil {
		return err
	}

	key, err := v.encryption.GenerateFamilyKey(ctx, actor.FamilyID, salt)
	if err != nil {
		return err
	}
	defer key.Zero()

	return fn(key)
}

// record writes one encryption_operations_log row. A decryption that fails integrity
// checks is also raised as a HIGH security event.
func (v *vaultUseCase) record(
	ctx context.Context,
	actor Actor,
	direction string,
	dataType cryptoDomain.DataType,
	err error,
) {
	op := &auditDomain.EncryptionOperation{
		FamilyID:      actor.FamilyID,
		UserID:        actor.UserID,
		OperationType: direction + "_" + string(dataType),
		TableName:     dataTables[dataType],
		Success:       err == nil,
	}
	if err != nil {
		message := err.Error()
		op.ErrorMessage = &message
	}
	v.auditLogger.LogEncryptionOperation(ctx, op)

	if err == nil || direction != "decrypt" || !apperrors.Is(err, apperrors.ErrIntegrity) {
		return
	}

	v.logger.Warn("decryption failed integrity check",
		slog.String("family_id", actor.FamilyID),
		slog.String("user_id", actor.UserID),
		slog.String("data_type", string(dataType)),
	)
	v.auditLogger.LogSecurityEvent(ctx, auditUseCase.SecurityEvent{
		FamilyID:  actor.FamilyID,
		UserID:    actor.UserID,
		EventType: EventDecryptionFailure,
		RiskLevel: auditDomain.RiskHigh,
		Details:   map[string]any{"data_type": string(dataType)},
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})
}
