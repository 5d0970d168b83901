// Package usecase serves a family's encrypted fields to client services. Each call
// derives the family key from the acting user's salt, runs one encryption use case
// operation and records the attempt in the audit trail.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// UserSaltReader resolves the per-user salt that seeds the family key.
type UserSaltReader interface {
	// GetUserSalt returns ErrMissingUserSalt when the profile is absent or has no salt.
	GetUserSalt(ctx context.Context, familyID, userID string) (string, error)
}

// Actor identifies the user acting on a family's data and where the request came from.
type Actor struct {
	FamilyID  string
	UserID    string
	IPAddress *string
	UserAgent *string
}

// VaultUseCase is the family-scoped encryption surface exposed over HTTP.
type VaultUseCase interface {
	EncryptFinancialAmount(
		ctx context.Context,
		actor Actor,
		amount float64,
		currency string,
	) (*cryptoDomain.FinancialAmountEnvelope, error)
	DecryptFinancialAmount(
		ctx context.Context,
		actor Actor,
		envelope *cryptoDomain.FinancialAmountEnvelope,
	) (*cryptoDomain.FinancialAmount, error)

	EncryptBankAccount(
		ctx context.Context,
		actor Actor,
		credentials *cryptoDomain.BankAccountCredentials,
	) (*cryptoDomain.BankAccountEnvelope, error)
	DecryptBankAccount(
		ctx context.Context,
		actor Actor,
		envelope *cryptoDomain.BankAccountEnvelope,
	) (*cryptoDomain.BankAccountData, error)
	// VerifyBankAccountNumbers reports whether the given numbers match the hashes on the
	// envelope. An empty routing number is not checked.
	VerifyBankAccountNumbers(
		ctx context.Context,
		actor Actor,
		accountNumber, routingNumber string,
		envelope *cryptoDomain.BankAccountEnvelope,
	) bool

	EncryptUserPII(ctx context.Context, actor Actor, pii *cryptoDomain.UserPII) (*cryptoDomain.UserPIIEnvelope, error)
	DecryptUserPII(
		ctx context.Context,
		actor Actor,
		envelope *cryptoDomain.UserPIIEnvelope,
	) (*cryptoDomain.UserPII, error)

	// The legacy helpers use the master key directly and need no user salt.
	EncryptSensitiveData(ctx context.Context, actor Actor, plaintext string) (*cryptoDomain.EncryptedBlob, error)
	DecryptSensitiveData(ctx context.Context, actor Actor, blob *cryptoDomain.EncryptedBlob) (string, error)
	EncryptAmount(ctx context.Context, actor Actor, amount float64) (*cryptoDomain.EncryptedBlob, error)
	DecryptAmount(ctx context.Context, actor Actor, blob *cryptoDomain.EncryptedBlob) (float64, error)

	HashSensitiveData(ctx context.Context, data string) (string, error)
	VerifySensitiveDataHash(ctx context.Context, data, stored string) bool
}
