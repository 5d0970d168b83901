package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// AccountRepository reads and updates financial account balances pending encryption.
type AccountRepository interface {
	CountUnencrypted(ctx context.Context, familyID string) (int, error)
	// ListUnencrypted returns every pending account of the family ordered by id.
	ListUnencrypted(ctx context.Context, familyID string) ([]*migrationDomain.AccountRow, error)
	UpdateBalanceEncrypted(
		ctx context.Context,
		familyID, id string,
		envelope *cryptoDomain.FinancialAmountEnvelope,
	) error
}

// TransactionRepository reads and updates transaction amounts pending encryption.
type TransactionRepository interface {
	CountUnencrypted(ctx context.Context, familyID string) (int, error)
	// ListUnencrypted returns up to limit pending transactions with id greater than
	// afterID, ordered by id.
	ListUnencrypted(
		ctx context.Context,
		familyID, afterID string,
		limit int,
	) ([]*migrationDomain.TransactionRow, error)
	UpdateAmountEncrypted(
		ctx context.Context,
		familyID, id string,
		envelope *cryptoDomain.FinancialAmountEnvelope,
	) error
}

// ProfileRepository reads user salts and updates profile PII pending encryption.
type ProfileRepository interface {
	// GetUserSalt returns ErrMissingUserSalt when the profile is absent or has no salt.
	GetUserSalt(ctx context.Context, familyID, userID string) (string, error)
	CountUnencrypted(ctx context.Context, familyID string) (int, error)
	ListUnencrypted(
		ctx context.Context,
		familyID, afterUserID string,
		limit int,
	) ([]*migrationDomain.ProfileRow, error)
	UpdatePIIEncrypted(
		ctx context.Context,
		familyID, userID string,
		envelope *cryptoDomain.UserPIIEnvelope,
	) error
}

// ProgressFunc receives a snapshot after each row is picked up. It runs on the
// migrating goroutine.
type ProgressFunc func(progress migrationDomain.MigrationProgress)

// EncryptionMigrator encrypts a family's plaintext rows. Runs are idempotent: only rows
// without an envelope are read, so an interrupted run is resumed by running it again.
type EncryptionMigrator interface {
	MigrateAccountBalances(
		ctx context.Context,
		familyID string,
		familyKey cryptoDomain.FamilyKey,
	) *migrationDomain.MigrationResult
	MigrateTransactionAmounts(
		ctx context.Context,
		familyID string,
		familyKey cryptoDomain.FamilyKey,
	) *migrationDomain.MigrationResult
	MigrateUserPII(
		ctx context.Context,
		familyID string,
		familyKey cryptoDomain.FamilyKey,
	) *migrationDomain.MigrationResult

	// MigrateFamilyData derives the family key from userID's salt and runs the three
	// migrations in order. Configuration errors are returned before any row is read.
	MigrateFamilyData(ctx context.Context, familyID, userID string) (*migrationDomain.FamilySummary, error)
}
