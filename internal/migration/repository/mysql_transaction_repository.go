package repository

import (
	"context"
	"database/sql"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/database"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// MySQLTransactionRepository implements transaction migration persistence for
// MySQL.
type MySQLTransactionRepository struct {
	db *sql.DB
}

// CountUnencrypted counts the family's transactions without an amount envelope.
func (m *MySQLTransactionRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM transactions WHERE family_id = ? AND amount_encrypted IS NULL`

	var count int
	if err := querier.QueryRowContext(ctx, query, familyID).Scan(&count); err != nil {
		return 0, apperrors.Persistence(err, "failed to count pending transactions")
	}
	return count, nil
}

// ListUnencrypted returns up to limit pending transactions with id greater than afterID.
func (m *MySQLTransactionRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterID string,
	limit int,
) ([]*migrationDomain.TransactionRow, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, family_id, description, amount, currency FROM transactions
		WHERE family_id = ? AND amount_encrypted IS NULL AND id > ?
		ORDER BY id ASC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, familyID, afterID, limit)
	if err != nil {
		return nil, apperrors.Persistence(err, "failed to list pending transactions")
	}
	return collectTransactions(rows)
}

// UpdateAmountEncrypted stores the amount envelope. The plaintext amount is kept.
func (m *MySQLTransactionRepository) UpdateAmountEncrypted(
	ctx context.Context,
	familyID, id string,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) error {
	querier := database.GetTx(ctx, m.db)

	encrypted, err := marshalEnvelope(envelope, envelope == nil)
	if err != nil {
		return err
	}

	query := `UPDATE transactions
		SET amount_encrypted = ?, amount_encrypted_at = ?, encryption_version = ?
		WHERE id = ? AND family_id = ? AND amount_encrypted IS NULL`

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

// NewMySQLTransactionRepository creates a new MySQL transaction repository.
func NewMySQLTransactionRepository(db *sql.DB) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db}
}
