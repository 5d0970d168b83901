// Package mocks provides testify mocks for the migration use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockAccountRepository is a mock of usecase.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock that asserts its expectations on cleanup.
func NewMockAccountRepository(t testingT) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	args := m.Called(ctx, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) ListUnencrypted(
	ctx context.Context,
	familyID string,
) ([]*migrationDomain.AccountRow, error) {
	args := m.Called(ctx, familyID)
	rows, _ := args.Get(0).([]*migrationDomain.AccountRow)
	return rows, args.Error(1)
}

func (m *MockAccountRepository) UpdateBalanceEncrypted(
	ctx context.Context,
	familyID, id string,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) error {
	return m.Called(ctx, familyID, id, envelope).Error(0)
}

// MockTransactionRepository is a mock of usecase.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

// NewMockTransactionRepository creates a mock that asserts its expectations on cleanup.
func NewMockTransactionRepository(t testingT) *MockTransactionRepository {
	m := &MockTransactionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTransactionRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	args := m.Called(ctx, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockTransactionRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterID string,
	limit int,
) ([]*migrationDomain.TransactionRow, error) {
	args := m.Called(ctx, familyID, afterID, limit)
	rows, _ := args.Get(0).([]*migrationDomain.TransactionRow)
	return rows, args.Error(1)
}

func (m *MockTransactionRepository) UpdateAmountEncrypted(
	ctx context.Context,
	familyID, id string,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) error {
	return m.Called(ctx, familyID, id, envelope).Error(0)
}

// MockProfileRepository is a mock of usecase.ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

// NewMockProfileRepository creates a mock that asserts its expectations on cleanup.
func NewMockProfileRepository(t testingT) *MockProfileRepository {
	m := &MockProfileRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProfileRepository) GetUserSalt(ctx context.Context, familyID, userID string) (string, error) {
	args := m.Called(ctx, familyID, userID)
	return args.String(0), args.Error(1)
}

func (m *MockProfileRepository) CountUnencrypted(ctx context.Context, familyID string) (int, error) {
	args := m.Called(ctx, familyID)
	return args.Int(0), args.Error(1)
}

func (m *MockProfileRepository) ListUnencrypted(
	ctx context.Context,
	familyID, afterUserID string,
	limit int,
) ([]*migrationDomain.ProfileRow, error) {
	args := m.Called(ctx, familyID, afterUserID, limit)
	rows, _ := args.Get(0).([]*migrationDomain.ProfileRow)
	return rows, args.Error(1)
}

func (m *MockProfileRepository) UpdatePIIEncrypted(
	ctx context.Context,
	familyID, userID string,
	envelope *cryptoDomain.UserPIIEnvelope,
) error {
	return m.Called(ctx, familyID, userID, envelope).Error(0)
}

// MockEncryptionMigrator is a mock of usecase.EncryptionMigrator.
type MockEncryptionMigrator struct {
	mock.Mock
}

// NewMockEncryptionMigrator creates a mock that asserts its expectations on cleanup.
func NewMockEncryptionMigrator(t testingT) *MockEncryptionMigrator {
	m := &MockEncryptionMigrator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEncryptionMigrator) MigrateAccountBalances(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	result, _ := m.Called(ctx, familyID, familyKey).Get(0).(*migrationDomain.MigrationResult)
	return result
}

func (m *MockEncryptionMigrator) MigrateTransactionAmounts(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	result, _ := m.Called(ctx, familyID, familyKey).Get(0).(*migrationDomain.MigrationResult)
	return result
}

func (m *MockEncryptionMigrator) MigrateUserPII(
	ctx context.Context,
	familyID string,
	familyKey cryptoDomain.FamilyKey,
) *migrationDomain.MigrationResult {
	result, _ := m.Called(ctx, familyID, familyKey).Get(0).(*migrationDomain.MigrationResult)
	return result
}

func (m *MockEncryptionMigrator) MigrateFamilyData(
	ctx context.Context,
	familyID, userID string,
) (*migrationDomain.FamilySummary, error) {
	args := m.Called(ctx, familyID, userID)
	summary, _ := args.Get(0).(*migrationDomain.FamilySummary)
	return summary, args.Error(1)
}
