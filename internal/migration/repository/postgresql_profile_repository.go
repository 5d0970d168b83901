package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

const profileColumns = `user_id, family_id, full_name, date_of_birth, ssn, address, phone_number, emergency_contact`

// PostgreSQLProfileRepository implements profile migration persistence for PostgreSQL.
type PostgreSQLProfileRepository struct {
	db *sql.DB
}

// GetUserSalt returns the user's encryption salt.
func (p *PostgreSQLProfileRepository) GetUserSalt(ctx context.Context, familyID, userID string) (string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT encryption_salt FROM profiles WHERE user_id = $1 AND family_id = $2`

	return scanSalt(querier.QueryRowContext(ctx, query, userID, familyID))
}

// CountUnencrypted counts the family's profiles without a PII envelope.
func (p *PostgreSQLProfileRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM profiles WHERE family_id = $1 AND pii_encrypted IS NULL`

	var count int
	if err := querier.QueryRowContext(ctx, query, familyID).Scan(&count); err != nil {
		return 0, apperrors.Persistence(err, "failed to count pending profiles")
	}
	return count, nil
}

// ListUnencrypted returns up to limit pending profiles with user id greater than
// afterUserID.
func (p *PostgreSQLProfileRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterUserID string,
	limit int,
) ([]*migrationDomain.ProfileRow, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE family_id = $1 AND pii_encrypted IS NULL AND user_id > $2
		ORDER BY user_id ASC LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, familyID, afterUserID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending profiles")
	}
	return collectProfiles(rows)
}

// UpdatePIIEncrypted stores the PII envelope. Plaintext columns are kept.
func (p *PostgreSQLProfileRepository) UpdatePIIEncrypted(
	ctx context.Context,
	familyID, userID string,
	envelope *cryptoDomain.UserPIIEnvelope,
) error {
	querier := database.GetTx(ctx, p.db)

	encrypted, err := marshalEnvelope(envelope, envelope == nil)
	if err != nil {
		return err
	}

	query := `UPDATE profiles
		SET pii_encrypted = $1, pii_encrypted_at = $2, encryption_version = $3
		WHERE user_id = $4 AND family_id = $5 AND pii_encrypted IS NULL`

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

// NewPostgreSQLProfileRepository creates a new PostgreSQL profile repository.
func NewPostgreSQLProfileRepository(db *sql.DB) *PostgreSQLProfileRepository {
	return &PostgreSQLProfileRepository{db: db}
}
