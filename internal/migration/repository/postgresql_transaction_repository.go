package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// PostgreSQLTransactionRepository implements transaction migration persistence for
// PostgreSQL.
type PostgreSQLTransactionRepository struct {
	db *sql.DB
}

// CountUnencrypted counts the family's transactions without an amount envelope.
func (p *PostgreSQLTransactionRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM transactions WHERE family_id = $1 AND amount_encrypted IS NULL`

	var count int
	if err := querier.QueryRowContext(ctx, query, familyID).Scan(&count); err != nil {
		return 0, apperrors.Persistence(err, "failed to count pending transactions")
	}
	return count, nil
}

// ListUnencrypted returns up to limit pending transactions with id greater than afterID.
func (p *PostgreSQLTransactionRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterID string,
	limit int,
) ([]*migrationDomain.TransactionRow, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, family_id, description, amount, currency FROM transactions
		WHERE family_id = $1 AND amount_encrypted IS NULL AND id > $2
		ORDER BY id ASC LIMIT $3`

	rows, err := querier.QueryContext(ctx, query, familyID, afterID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending transactions")
	}
	return collectTransactions(rows)
}

// UpdateAmountEncrypted stores the amount envelope. The plaintext amount is kept.
func (p *PostgreSQLTransactionRepository) UpdateAmountEncrypted(
	ctx context.Context,
	familyID, id string,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) error {
	querier := database.GetTx(ctx, p.db)

	encrypted, err := marshalEnvelope(envelope, envelope == nil)
	if err != nil {
		return err
	}

	query := `UPDATE transactions
		SET amount_encrypted = $1, amount_encrypted_at = $2, encryption_version = $3
		WHERE id = $4 AND family_id = $5 AND amount_encrypted IS NULL`

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
		return apperrors.Persistence(err, "failed to update transaction amount")
	}
	return checkUpdated(result, "failed to update transaction amount")
}

// NewPostgreSQLTransactionRepository creates a new PostgreSQL transaction repository.
func NewPostgreSQLTransactionRepository(db *sql.DB) *PostgreSQLTransactionRepository {
	return &PostgreSQLTransactionRepository{db: db}
}
