// Package mocks provides testify mocks for the vault use case.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	vaultUseCase "github.com/allisson/finvault/internal/vault/usecase"
)

// MockVaultUseCase is a mock of usecase.VaultUseCase.
type MockVaultUseCase struct {
	mock.Mock
}

// NewMockVaultUseCase creates a mock that asserts its expectations on cleanup.
func NewMockVaultUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockVaultUseCase {
	m := &MockVaultUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockVaultUseCase) EncryptFinancialAmount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	amount float64,
	currency string,
) (*cryptoDomain.FinancialAmountEnvelope, error) {
	args := m.Called(ctx, actor, amount, currency)
	envelope, _ := args.Get(0).(*cryptoDomain.FinancialAmountEnvelope)
	return envelope, args.Error(1)
}

func (m *MockVaultUseCase) DecryptFinancialAmount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	envelope *cryptoDomain.FinancialAmountEnvelope,
) (*cryptoDomain.FinancialAmount, error) {
	args := m.Called(ctx, actor, envelope)
	record, _ := args.Get(0).(*cryptoDomain.FinancialAmount)
	return record, args.Error(1)
}

func (m *MockVaultUseCase) EncryptBankAccount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	credentials *cryptoDomain.BankAccountCredentials,
) (*cryptoDomain.BankAccountEnvelope, error) {
	args := m.Called(ctx, actor, credentials)
	envelope, _ := args.Get(0).(*cryptoDomain.BankAccountEnvelope)
	return envelope, args.Error(1)
}

func (m *MockVaultUseCase) DecryptBankAccount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	envelope *cryptoDomain.BankAccountEnvelope,
) (*cryptoDomain.BankAccountData, error) {
	args := m.Called(ctx, actor, envelope)
	data, _ := args.Get(0).(*cryptoDomain.BankAccountData)
	return data, args.Error(1)
}

func (m *MockVaultUseCase) VerifyBankAccountNumbers(
	ctx context.Context,
	actor vaultUseCase.Actor,
	accountNumber, routingNumber string,
	envelope *cryptoDomain.BankAccountEnvelope,
) bool {
	return m.Called(ctx, actor, accountNumber, routingNumber, envelope).Bool(0)
}

func (m *MockVaultUseCase) EncryptUserPII(
	ctx context.Context,
	actor vaultUseCase.Actor,
	pii *cryptoDomain.UserPII,
) (*cryptoDomain.UserPIIEnvelope, error) {
	args := m.Called(ctx, actor, pii)
	envelope, _ := args.Get(0).(*cryptoDomain.UserPIIEnvelope)
	return envelope, args.Error(1)
}

func (m *MockVaultUseCase) DecryptUserPII(
	ctx context.Context,
	actor vaultUseCase.Actor,
	envelope *cryptoDomain.UserPIIEnvelope,
) (*cryptoDomain.UserPII, error) {
	args := m.Called(ctx, actor, envelope)
	pii, _ := args.Get(0).(*cryptoDomain.UserPII)
	return pii, args.Error(1)
}

func (m *MockVaultUseCase) EncryptSensitiveData(
	ctx context.Context,
	actor vaultUseCase.Actor,
	plaintext string,
) (*cryptoDomain.EncryptedBlob, error) {
	args := m.Called(ctx, actor, plaintext)
	blob, _ := args.Get(0).(*cryptoDomain.EncryptedBlob)
	return blob, args.Error(1)
}

func (m *MockVaultUseCase) DecryptSensitiveData(
	ctx context.Context,
	actor vaultUseCase.Actor,
	blob *cryptoDomain.EncryptedBlob,
) (string, error) {
	args := m.Called(ctx, actor, blob)
	return args.String(0), args.Error(1)
}

func (m *MockVaultUseCase) EncryptAmount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	amount float64,
) (*cryptoDomain.EncryptedBlob, error) {
	args := m.Called(ctx, actor, amount)
	blob, _ := args.Get(0).(*cryptoDomain.EncryptedBlob)
	return blob, args.Error(1)
}

func (m *MockVaultUseCase) DecryptAmount(
	ctx context.Context,
	actor vaultUseCase.Actor,
	blob *cryptoDomain.EncryptedBlob,
) (float64, error) {
	args := m.Called(ctx, actor, blob)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockVaultUseCase) HashSensitiveData(ctx context.Context, data string) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockVaultUseCase) VerifySensitiveDataHash(ctx context.Context, data, stored string) bool {
	return m.Called(ctx, data, stored).Bool(0)
}
