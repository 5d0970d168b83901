package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// MySQLProfileRepository implements profile migration persistence for MySQL.
type MySQLProfileRepository struct {
	db *sql.DB
}

// GetUserSalt returns the user's encryption salt.
func (m *MySQLProfileRepository) GetUserSalt(ctx context.Context, familyID, userID string) (string, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT encryption_salt FROM profiles WHERE user_id = ? AND family_id = ?`

	return scanSalt(querier.QueryRowContext(ctx, query, userID, familyID))
}

// CountUnencrypted counts the family's profiles without a PII envelope.
func (m *MySQLProfileRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM profiles WHERE family_id = ? AND pii_encrypted IS NULL`

	var count int
	if err := querier.QueryRowContext(ctx, query, familyID).Scan(&count); err != nil {
		return 0, apperrors.Persistence(err, "failed to count pending profiles")
	}
	return count, nil
}

// ListUnencrypted returns up to limit pending profiles with user id greater than
// afterUserID.
func (m *MySQLProfileRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterUserID string,
	limit int,
) ([]*migrationDomain.ProfileRow, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE family_id = ? AND pii_encrypted IS NULL AND user_id > ?
		ORDER BY user_id ASC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, familyID, afterUserID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending profiles")
	}
	return collectProfiles(rows)
}

// UpdatePIIEncrypted stores the PII envelope. Plaintext columns are kept.
func (m *MySQLProfileRepository) UpdatePIIEncrypted(
	ctx context.Context,
	familyID, userID string,
	envelope *cryptoDomain.UserPIIEnvelope,
) error {
	querier := database.GetTx(ctx, m.db)

	encrypted, err := marshalEnvelope(envelope, envelope == nil)
	if err != nil {
		return err
	}

	query := `UPDATE profiles
		SET pii_encrypted = ?, pii_encrypted_at = ?, encryption_version = ?
		WHERE user_id = ? AND family_id = ? AND pii_encrypted IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		encrypted,
		envelope.EncryptedAt.UTC(),
		cryptoDomain.EncryptionVersion,
		userID,
		familyID,
	)
	if err != nil {
		return apperrors.Persistence(err, "failed to update profile pii")
	}
	return checkUpdated(result, "failed to update profile pii")
}

// NewMySQLProfileRepository creates a new MySQL profile repository.
func NewMySQLProfileRepository(db *sql.DB) *MySQLProfileRepository {
	return &MySQLProfileRepository{db: db}
}
