package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/metrics"
)

const metricsDomain = "encryption"

// encryptionUseCaseWithMetrics decorates EncryptionUseCase with metrics instrumentation.
type encryptionUseCaseWithMetrics struct {
	next    EncryptionUseCase
	metrics metrics.BusinessMetrics
}

// NewEncryptionUseCaseWithMetrics wraps an EncryptionUseCase with metrics recording.
func NewEncryptionUseCaseWithMetrics(useCase EncryptionUseCase, m metrics.BusinessMetrics) EncryptionUseCase {
	return &encryptionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *encryptionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	e.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// GenerateFamilyKey records metrics for family key derivation.
func (e *encryptionUseCaseWithMetrics) GenerateFamilyKey(
	ctx context.Context,
	familyID, userSalt string,
) (cryptoDomain.FamilyKey, error) {
	start := time.Now()
	key, err := e.next.GenerateFamilyKey(ctx, familyID, userSalt)
	e.record(ctx, "family_key_generate", start, err)
	return key, err
}

// EncryptFinancialAmount records metrics for financial amount encryption.
func (e *encryptionUseCaseWithMetrics) EncryptFinancialAmount(
	ctx context.Context,
	amount float64,
	currency string,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmountEnvelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptFinancialAmount(ctx, amount, currency, familyKey)
	e.record(ctx, "financial_amount_encrypt", start, err)
	return envelope, err
}

// DecryptFinancialAmount records metrics for financial amount decryption.
func (e *encryptionUseCaseWithMetrics) DecryptFinancialAmount(
	ctx context.Context,
	envelope *cryptoDomain.FinancialAmountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmount, error) {
	start := time.Now()
	record, err := e.next.DecryptFinancialAmount(ctx, envelope, familyKey)
	e.record(ctx, "financial_amount_decrypt", start, err)
	return record, err
}

// EncryptBankAccountData records metrics for bank account encryption.
func (e *encryptionUseCaseWithMetrics) EncryptBankAccountData(
	ctx context.Context,
	credentials *cryptoDomain.BankAccountCredentials,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountEnvelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptBankAccountData(ctx, credentials, familyKey)
	e.record(ctx, "bank_account_encrypt", start, err)
	return envelope, err
}

// DecryptBankAccountData records metrics for bank account decryption.
func (e *encryptionUseCaseWithMetrics) DecryptBankAccountData(
	ctx context.Context,
	envelope *cryptoDomain.BankAccountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountData, error) {
	start := time.Now()
	data, err := e.next.DecryptBankAccountData(ctx, envelope, familyKey)
	e.record(ctx, "bank_account_decrypt", start, err)
	return data, err
}

// EncryptUserPII records metrics for PII encryption.
func (e *encryptionUseCaseWithMetrics) EncryptUserPII(
	ctx context.Context,
	pii *cryptoDomain.UserPII,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPIIEnvelope, error) {
	start := time.Now()
	envelope, err := e.next.EncryptUserPII(ctx, pii, familyKey)
	e.record(ctx, "user_pii_encrypt", start, err)
	return envelope, err
}

// DecryptUserPII records metrics for PII decryption.
func (e *encryptionUseCaseWithMetrics) DecryptUserPII(
	ctx context.Context,
	envelope *cryptoDomain.UserPIIEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPII, error) {
	start := time.Now()
	pii, err := e.next.DecryptUserPII(ctx, envelope, familyKey)
	e.record(ctx, "user_pii_decrypt", start, err)
	return pii, err
}

// EncryptSensitiveData records metrics for global-key encryption.
func (e *encryptionUseCaseWithMetrics) EncryptSensitiveData(
	ctx context.Context,
	plaintext string,
) (*cryptoDomain.EncryptedBlob, error) {
	start := time.Now()
	blob, err := e.next.EncryptSensitiveData(ctx, plaintext)
	e.record(ctx, "sensitive_data_encrypt", start, err)
	return blob, err
}

// DecryptSensitiveData records metrics for global-key decryption.
func (e *encryptionUseCaseWithMetrics) DecryptSensitiveData(
	ctx context.Context,
	blob *cryptoDomain.EncryptedBlob,
) (string, error) {
	start := time.Now()
	plaintext, err := e.next.DecryptSensitiveData(ctx, blob)
	e.record(ctx, "sensitive_data_decrypt", start, err)
	return plaintext, err
}

// EncryptAmount records metrics for global-key amount encryption.
func (e *encryptionUseCaseWithMetrics) EncryptAmount(
	ctx context.Context,
	amount float64,
) (*cryptoDomain.EncryptedBlob, error) {
	start := time.Now()
	blob, err := e.next.EncryptAmount(ctx, amount)
	e.record(ctx, "amount_encrypt", start, err)
	return blob, err
}

// DecryptAmount records metrics for global-key amount decryption.
func (e *encryptionUseCaseWithMetrics) DecryptAmount(
	ctx context.Context,
	blob *cryptoDomain.EncryptedBlob,
) (float64, error) {
	start := time.Now()
	amount, err := e.next.DecryptAmount(ctx, blob)
	e.record(ctx, "amount_decrypt", start, err)
	return amount, err
}

// HashSensitiveData records metrics for one-way hashing.
func (e *encryptionUseCaseWithMetrics) HashSensitiveData(ctx context.Context, data string) (string, error) {
	start := time.Now()
	hash, err := e.next.HashSensitiveData(ctx, data)
	e.record(ctx, "sensitive_data_hash", start, err)
	return hash, err
}

// VerifySensitiveDataHash records mismatches under their own status.
func (e *encryptionUseCaseWithMetrics) VerifySensitiveDataHash(ctx context.Context, data, stored string) bool {
	start := time.Now()
	ok := e.next.VerifySensitiveDataHash(ctx, data, stored)
	status := "success"
	if !ok {
		status = "mismatch"
	}
	e.metrics.RecordOperation(ctx, metricsDomain, "sensitive_data_verify", status)
	e.metrics.RecordDuration(ctx, metricsDomain, "sensitive_data_verify", time.Since(start), status)
	return ok
}
