package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// PostgreSQLAccountRepository implements account migration persistence for PostgreSQL.
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// CountUnencrypted counts the family's accounts without a balance envelope.
func (p *PostgreSQLAccountRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM financial_accounts WHERE family_id = $1 AND balance_encrypted IS NULL`

	var count int
	if err := querier.QueryRowContext(ctx, query, familyID).Scan(&count); err != nil {
		return 0, apperrors.Persistence(err, "failed to count pending accounts")
	}
	return count, nil
}

// ListUnencrypted returns every pending account of the family ordered by id.
func (p *PostgreSQLAccountRepository) ListUnencrypted(
	ctx context.Context,
	familyID string,
) ([]*migrationDomain.AccountRow, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, family_id, name, balance, currency FROM financial_accounts
		WHERE family_id = $1 AND balance_encrypted IS NULL ORDER BY id ASC`

	rows, err := querier.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending accounts")
	}
	return collectAccounts(rows)
}

// UpdateBalanceEncrypted stores the balance envelope. The plaintext balance is kept.
func (p *PostgreSQLAccountRepository) UpdateBalanceEncrypted(
	ctx context.Context,
	familyID, id string,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) error {
	querier := database.GetTx(ctx, p.db)

	encrypted, err := marshalEnvelope(envelope, envelope == nil)
	if err != nil {
		return err
	}

	query := `UPDATE financial_accounts
		SET balance_encrypted = $1, balance_encrypted_at = $2, encryption_version = $3
		WHERE id = $4 AND family_id = $5 AND balance_encrypted IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		encrypted,
		envelope.EncryptedAt.UTC(),
		cryptoDomain.EncryptionVersion,
		id,
		familyID,
	)
	if err != nil {
		return apperrors.Persistence(err, "failed to update account balance")
	}
	return checkUpdated(result, "failed to update account balance")
}

// NewPostgreSQLAccountRepository creates a new PostgreSQL account repository.
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{db: db}
}
