package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// EncryptionUseCase is the public encryption surface used by the migrator, the CLI and
// any live read/write path. Family-scoped operations derive a fresh cipher key per call
// from the family key and a random salt; the SensitiveData and Amount helpers use the
// master key directly for legacy data.
type EncryptionUseCase interface {
	GenerateFamilyKey(ctx context.Context, familyID, userSalt string) (cryptoDomain.FamilyKey, error)

	EncryptFinancialAmount(
		ctx context.Context,
		amount float64,
		currency string,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.FinancialAmountEnvelope, error)
	DecryptFinancialAmount(
		ctx context.Context,
		envelope *cryptoDomain.FinancialAmountEnvelope,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.FinancialAmount, error)

	EncryptBankAccountData(
		ctx context.Context,
		credentials *cryptoDomain.BankAccountCredentials,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.BankAccountEnvelope, error)
	DecryptBankAccountData(
		ctx context.Context,
		envelope *cryptoDomain.BankAccountEnvelope,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.BankAccountData, error)

	EncryptUserPII(
		ctx context.Context,
		pii *cryptoDomain.UserPII,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.UserPIIEnvelope, error)
	DecryptUserPII(
		ctx context.Context,
		envelope *cryptoDomain.UserPIIEnvelope,
		familyKey cryptoDomain.FamilyKey,
	) (*cryptoDomain.UserPII, error)

	EncryptSensitiveData(ctx context.Context, plaintext string) (*cryptoDomain.EncryptedBlob, error)
	DecryptSensitiveData(ctx context.Context, blob *cryptoDomain.EncryptedBlob) (string, error)

	EncryptAmount(ctx context.Context, amount float64) (*cryptoDomain.EncryptedBlob, error)
	DecryptAmount(ctx context.Context, blob *cryptoDomain.EncryptedBlob) (float64, error)

	HashSensitiveData(ctx context.Context, data string) (string, error)
	VerifySensitiveDataHash(ctx context.Context, data, stored string) bool
}
