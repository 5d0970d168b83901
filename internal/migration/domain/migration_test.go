package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/finvault/internal/errors"
)

func TestMigrationResult(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("CompletedWhenNoFailures", func(t *testing.T) {
		r := NewMigrationResult(EntityAccounts, start)
		assert.Equal(t, StateNotStarted, r.State)
		assert.NotNil(t, r.Errors)

		r.Start()
		assert.Equal(t, StateRunning, r.State)

		r.Processed = 2
		r.RecordSuccess()
		r.RecordSuccess()
		r.Finish(start.Add(1500 * time.Millisecond))

		assert.True(t, r.Success)
		assert.Equal(t, StateCompleted, r.State)
		assert.Equal(t, 2, r.Encrypted)
		assert.Equal(t, int64(1500), r.DurationMs)
	})

	t.Run("PartiallyFailedOnRowFailure", func(t *testing.T) {
		r := NewMigrationResult(EntityTransactions, start)
		r.Start()
		r.Processed = 1
		r.RecordFailure("transaction tx-1: boom")
		r.Finish(start)

		assert.False(t, r.Success)
		assert.Equal(t, StatePartiallyFailed, r.State)
		assert.Equal(t, []string{"transaction tx-1: boom"}, r.Errors)
	})

	t.Run("PartiallyFailedOnRunError", func(t *testing.T) {
		r := NewMigrationResult(EntityProfiles, start)
		r.Start()
		r.Abort("failed to fetch profiles")
		r.Finish(start)

		assert.True(t, r.Aborted())
		assert.False(t, r.Success)
		assert.Equal(t, 0, r.Failed)
		assert.Len(t, r.Errors, 1)
	})
}

func TestNewMigrationProgress(t *testing.T) {
	p := NewMigrationProgress(EntityTransactions, 1, 3, "Coffee")
	assert.Equal(t, "Encrypting transaction amounts", p.Stage)
	assert.Equal(t, 33.3, p.Percentage)
	assert.Equal(t, "Coffee", p.CurrentItem)

	assert.Equal(t, 100.0, NewMigrationProgress(EntityAccounts, 4, 4, "").Percentage)
	assert.Equal(t, 0.0, NewMigrationProgress(EntityAccounts, 0, 0, "").Percentage)
}

func TestFamilySummary_Finish(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	accounts := NewMigrationResult(EntityAccounts, start)
	accounts.Processed, accounts.Encrypted = 2, 2
	accounts.Finish(start)

	transactions := NewMigrationResult(EntityTransactions, start)
	transactions.Processed, transactions.Encrypted = 5, 4
	transactions.RecordFailure("boom")
	transactions.Finish(start)

	summary := &FamilySummary{FamilyID: "fam-1", StartTime: start, Accounts: accounts, Transactions: transactions}
	summary.Finish(start.Add(time.Second))

	assert.Len(t, summary.Results(), 2)
	assert.Equal(t, 7, summary.TotalProcessed)
	assert.Equal(t, 6, summary.TotalEncrypted)
	assert.Equal(t, 1, summary.TotalFailed)
	assert.False(t, summary.Success)
	assert.Equal(t, int64(1000), summary.DurationMs)
}

func TestErrors(t *testing.T) {
	assert.True(t, apperrors.Is(ErrMissingUserSalt, apperrors.ErrConfiguration))
	assert.True(t, apperrors.Is(ErrRowNotPending, apperrors.ErrConflict))
}

func TestProfileRow_UserPII(t *testing.T) {
	t.Run("WithEmergencyContact", func(t *testing.T) {
		row := &ProfileRow{
			UserID:           "user-1",
			FullName:         "Ada Lovelace",
			SSN:              "123-45-6789",
			EmergencyContact: []byte(`{"name":"Charles","phone_number":"555-0100","relationship":"friend"}`),
		}
		pii, err := row.UserPII()
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", pii.FullName)
		assert.Equal(t, "123-45-6789", pii.SSN)
		require.NotNil(t, pii.EmergencyContact)
		assert.Equal(t, "Charles", pii.EmergencyContact.Name)
	})

	t.Run("NullEmergencyContact", func(t *testing.T) {
		pii, err := (&ProfileRow{EmergencyContact: []byte("null")}).UserPII()
		require.NoError(t, err)
		assert.Nil(t, pii.EmergencyContact)
		assert.True(t, pii.IsEmpty())
	})

	t.Run("MalformedEmergencyContact", func(t *testing.T) {
		_, err := (&ProfileRow{EmergencyContact: []byte("{")}).UserPII()
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEntity(t *testing.T) {
	assert.Equal(t, "financial_accounts", EntityAccounts.Table())
	assert.Equal(t, "transactions", EntityTransactions.Table())
	assert.Equal(t, "profiles", EntityProfiles.Table())
	assert.Equal(t, "encrypt_financial_amount", EntityTransactions.OperationType())
	assert.Equal(t, "encrypt_user_pii", EntityProfiles.OperationType())
	assert.Equal(t, "Encrypting user PII", EntityProfiles.Stage())
}
