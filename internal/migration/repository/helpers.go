// Package repository provides PostgreSQL and MySQL access to the rows an encryption
// migration reads and updates. Pending rows are those whose encrypted column is NULL.
package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	apperrors "github.com/allisson/finvault/internal/errors"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// marshalEnvelope renders an envelope as the JSON text stored in *_encrypted columns.
// isNil guards against typed nil pointers.
func marshalEnvelope(envelope any, isNil bool) (string, error) {
	if isNil {
		return "", apperrors.Wrap(cryptoDomain.ErrInvalidEnvelope, "envelope is required")
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return string(data), nil
}

// checkUpdated maps an update that matched no pending row to ErrRowNotPending.
func checkUpdated(result sql.Result, message string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err, message)
	}
	if affected == 0 {
		return migrationDomain.ErrRowNotPending
	}
	return nil
}

func collectAccounts(rows *sql.Rows) ([]*migrationDomain.AccountRow, error) {
	defer func() {
		_ = rows.Close()
	}()

	accounts := make([]*migrationDomain.AccountRow, 0)
	for rows.Next() {
		var account migrationDomain.AccountRow
		var name sql.NullString
		if err := rows.Scan(&account.ID, &account.FamilyID, &name, &account.Balance, &account.Currency); err != nil {
			return nil, apperrors.Persistence(err, "failed to scan account")
		}
		account.Name = name.String
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "failed to iterate accounts")
	}
	return accounts, nil
}

func collectTransactions(rows *sql.Rows) ([]*migrationDomain.TransactionRow, error) {
	defer func() {
		_ = rows.Close()
	}()

	transactions := make([]*migrationDomain.TransactionRow, 0)
	for rows.Next() {
		var tx migrationDomain.TransactionRow
		var description sql.NullString
		if err := rows.Scan(&tx.ID, &tx.FamilyID, &description, &tx.Amount, &tx.Currency); err != nil {
			return nil, apperrors.Persistence(err, "failed to scan transaction")
		}
		tx.Description = description.String
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "failed to iterate transactions")
	}
	return transactions, nil
}

func collectProfiles(rows *sql.Rows) ([]*migrationDomain.ProfileRow, error) {
	defer func() {
		_ = rows.Close()
	}()

	profiles := make([]*migrationDomain.ProfileRow, 0)
	for rows.Next() {
		var profile migrationDomain.ProfileRow
		var fullName, dateOfBirth, ssn, address, phoneNumber sql.NullString
		var emergencyContact []byte
		if err := rows.Scan(
			&profile.UserID,
			&profile.FamilyID,
			&fullName,
			&dateOfBirth,
			&ssn,
			&address,
			&phoneNumber,
			&emergencyContact,
		); err != nil {
			return nil, apperrors.Persistence(err, "failed to scan profile")
		}
		profile.FullName = fullName.String
		profile.DateOfBirth = dateOfBirth.String
		profile.SSN = ssn.String
		profile.Address = address.String
		profile.PhoneNumber = phoneNumber.String
		profile.EmergencyContact = emergencyContact
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "failed to iterate profiles")
	}
	return profiles, nil
}

// scanSalt maps a missing row or an empty salt to ErrMissingUserSalt.
func scanSalt(row *sql.Row) (string, error) {
	var salt sql.NullString
	if err := row.Scan(&salt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", migrationDomain.ErrMissingUserSalt
		}
		return "", apperrors.Persistence(err, "failed to get user salt")
	}
	if !salt.Valid || salt.String == "" {
		return "", migrationDomain.ErrMissingUserSalt
	}
	return salt.String, nil
}
