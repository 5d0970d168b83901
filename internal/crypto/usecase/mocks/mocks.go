// Package mocks provides testify mocks for the crypto use case interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// MockEncryptionUseCase is a mock of usecase.EncryptionUseCase.
type MockEncryptionUseCase struct {
	mock.Mock
}

// NewMockEncryptionUseCase creates a mock that asserts its expectations on cleanup.
func NewMockEncryptionUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEncryptionUseCase {
	m := &MockEncryptionUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockEncryptionUseCase) GenerateFamilyKey(
	ctx context.Context,
	familyID, userSalt string,
) (cryptoDomain.FamilyKey, error) {
	args := m.Called(ctx, familyID, userSalt)
	return args.Get(0).(cryptoDomain.FamilyKey), args.Error(1)
}

func (m *MockEncryptionUseCase) EncryptFinancialAmount(
	ctx context.Context,
	amount float64,
	currency string,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmountEnvelope, error) {
	args := m.Called(ctx, amount, currency, familyKey)
	envelope, _ := args.Get(0).(*cryptoDomain.FinancialAmountEnvelope)
	return envelope, args.Error(1)
}

func (m *MockEncryptionUseCase) DecryptFinancialAmount(
	ctx context.Context,
	envelope *cryptoDomain.FinancialAmountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmount, error) {
	args := m.Called(ctx, envelope, familyKey)
	record, _ := args.Get(0).(*cryptoDomain.FinancialAmount)
	return record, args.Error(1)
}

func (m *MockEncryptionUseCase) EncryptBankAccountData(
	ctx context.Context,
	credentials *cryptoDomain.BankAccountCredentials,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountEnvelope, error) {
	args := m.Called(ctx, credentials, familyKey)
	envelope, _ := args.Get(0).(*cryptoDomain.BankAccountEnvelope)
	return envelope, args.Error(1)
}

func (m *MockEncryptionUseCase) DecryptBankAccountData(
	ctx context.Context,
	envelope *cryptoDomain.BankAccountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountData, error) {
	args := m.Called(ctx, envelope, familyKey)
	data, _ := args.Get(0).(*cryptoDomain.BankAccountData)
	return data, args.Error(1)
}

func (m *MockEncryptionUseCase) EncryptUserPII(
	ctx context.Context,
	pii *cryptoDomain.UserPII,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPIIEnvelope, error) {
	args := m.Called(ctx, pii, familyKey)
	envelope, _ := args.Get(0).(*cryptoDomain.UserPIIEnvelope)
	return envelope, args.Error(1)
}

func (m *MockEncryptionUseCase) DecryptUserPII(
	ctx context.Context,
	envelope *cryptoDomain.UserPIIEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPII, error) {
	args := m.Called(ctx, envelope, familyKey)
	pii, _ := args.Get(0).(*cryptoDomain.UserPII)
	return pii, args.Error(1)
}

func (m *MockEncryptionUseCase) EncryptSensitiveData(
	ctx context.Context,
	plaintext string,
) (*cryptoDomain.EncryptedBlob, error) {
	args := m.Called(ctx, plaintext)
	blob, _ := args.Get(0).(*cryptoDomain.EncryptedBlob)
	return blob, args.Error(1)
}

func (m *MockEncryptionUseCase) DecryptSensitiveData(
	ctx context.Context,
	blob *cryptoDomain.EncryptedBlob,
) (string, error) {
	args := m.Called(ctx, blob)
	return args.String(0), args.Error(1)
}

func (m *MockEncryptionUseCase) EncryptAmount(ctx context.Context, amount float64) (*cryptoDomain.EncryptedBlob, error) {
	args := m.Called(ctx, amount)
	blob, _ := args.Get(0).(*cryptoDomain.EncryptedBlob)
	return blob, args.Error(1)
}

func (m *MockEncryptionUseCase) DecryptAmount(ctx context.Context, blob *cryptoDomain.EncryptedBlob) (float64, error) {
	args := m.Called(ctx, blob)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockEncryptionUseCase) HashSensitiveData(ctx context.Context, data string) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockEncryptionUseCase) VerifySensitiveDataHash(ctx context.Context, data, stored string) bool {
	args := m.Called(ctx, data, stored)
	return args.Bool(0)
}
