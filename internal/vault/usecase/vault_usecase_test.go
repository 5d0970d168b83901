package usecase_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	auditUseCase "github.com/allisson/finvault/internal/audit/usecase"
	auditMocks "github.com/allisson/finvault/internal/audit/usecase/mocks"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoMocks "github.com/allisson/finvault/internal/crypto/usecase/mocks"
	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
	migrationMocks "github.com/allisson/finvault/internal/migration/usecase/mocks"
	"github.com/allisson/finvault/internal/vault/usecase"
)

type vaultFixture struct {
	vault      usecase.VaultUseCase
	encryption *cryptoMocks.MockEncryptionUseCase
	salts      *migrationMocks.MockProfileRepository
	audit      *auditMocks.MockAuditLogger
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()

	f := &vaultFixture{
		encryption: cryptoMocks.NewMockEncryptionUseCase(t),
		salts:      migrationMocks.NewMockProfileRepository(t),
		audit:      auditMocks.NewMockAuditLogger(t),
	}
	f.vault = usecase.NewVaultUseCase(
		f.encryption,
		f.salts,
		f.audit,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

// expectFamilyKey wires salt lookup and key derivation and returns the key handed out.
func (f *vaultFixture) expectFamilyKey() cryptoDomain.FamilyKey {
	key := cryptoDomain.NewFamilyKey(bytes.Repeat([]byte{0x07}, 32))
	f.salts.On("GetUserSalt", mock.Anything, "family-1", "user-1").Return("salt-hex", nil).Once()
	f.encryption.On("GenerateFamilyKey", mock.Anything, "family-1", "salt-hex").Return(key, nil).Once()
	return key
}

func (f *vaultFixture) expectOperation(operationType, table string, success bool) {
	f.audit.On("LogEncryptionOperation", mock.Anything, mock.MatchedBy(func(op *auditDomain.EncryptionOperation) bool {
		return op.FamilyID == "family-1" &&
			op.UserID == "user-1" &&
			op.OperationType == operationType &&
			op.TableName == table &&
			op.Success == success &&
			(op.ErrorMessage == nil) == success
	})).Return(true).Once()
}

func (f *vaultFixture) expectSecurityEvent(eventType string, risk auditDomain.RiskLevel) {
	f.audit.On("LogSecurityEvent", mock.Anything, mock.MatchedBy(func(e auditUseCase.SecurityEvent) bool {
		return e.FamilyID == "family-1" && e.EventType == eventType && e.RiskLevel == risk
	})).Return(uuid.Must(uuid.NewV7()), true).Once()
}

var actor = usecase.Actor{FamilyID: "family-1", UserID: "user-1"}

func TestVaultUseCase_EncryptFinancialAmount(t *testing.T) {
	t.Run("Success_ZeroesFamilyKey", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		envelope := &cryptoDomain.FinancialAmountEnvelope{Currency: "USD"}
		f.encryption.On("EncryptFinancialAmount", mock.Anything, 125.5, "USD", key).Return(envelope, nil).Once()
		f.expectOperation("encrypt_financial_amount", "transactions", true)

		got, err := f.vault.EncryptFinancialAmount(context.Background(), actor, 125.5, "USD")

		require.NoError(t, err)
		assert.Same(t, envelope, got)
		assert.Equal(t, make([]byte, 32), key.Bytes())
	})

	t.Run("Error_MissingUserSalt", func(t *testing.T) {
		f := newVaultFixture(t)
		f.salts.On("GetUserSalt", mock.Anything, "family-1", "user-1").
			Return("", migrationDomain.ErrMissingUserSalt).
			Once()
		f.expectOperation("encrypt_financial_amount", "transactions", false)

		_, err := f.vault.EncryptFinancialAmount(context.Background(), actor, 1, "USD")

		assert.ErrorIs(t, err, migrationDomain.ErrMissingUserSalt)
		f.encryption.AssertNotCalled(t, "GenerateFamilyKey", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVaultUseCase_DecryptFinancialAmount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		envelope := &cryptoDomain.FinancialAmountEnvelope{Currency: "EUR"}
		record := &cryptoDomain.FinancialAmount{Amount: 12.34, Currency: "EUR"}
		f.encryption.On("DecryptFinancialAmount", mock.Anything, envelope, key).Return(record, nil).Once()
		f.expectOperation("decrypt_financial_amount", "transactions", true)

		got, err := f.vault.DecryptFinancialAmount(context.Background(), actor, envelope)

		require.NoError(t, err)
		assert.Equal(t, 12.34, got.Amount)
	})

	t.Run("Error_TamperedRaisesSecurityEvent", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		envelope := &cryptoDomain.FinancialAmountEnvelope{Currency: "EUR"}
		f.encryption.On("DecryptFinancialAmount", mock.Anything, envelope, key).
			Return(nil, cryptoDomain.ErrDecryptionFailed).
			Once()
		f.expectOperation("decrypt_financial_amount", "transactions", false)
		f.expectSecurityEvent(usecase.EventDecryptionFailure, auditDomain.RiskHigh)

		_, err := f.vault.DecryptFinancialAmount(context.Background(), actor, envelope)

		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("Error_InvalidEnvelopeIsNotASecurityEvent", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		f.encryption.On("DecryptFinancialAmount", mock.Anything, (*cryptoDomain.FinancialAmountEnvelope)(nil), key).
			Return(nil, cryptoDomain.ErrInvalidEnvelope).
			Once()
		f.expectOperation("decrypt_financial_amount", "transactions", false)

		_, err := f.vault.DecryptFinancialAmount(context.Background(), actor, nil)

		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidEnvelope)
		f.audit.AssertNotCalled(t, "LogSecurityEvent", mock.Anything, mock.Anything)
	})
}

func TestVaultUseCase_BankAccount(t *testing.T) {
	t.Run("EncryptAndDecrypt", func(t *testing.T) {
		f := newVaultFixture(t)

		credentials := &cryptoDomain.BankAccountCredentials{
			AccountNumber: "123456789",
			RoutingNumber: "021000021",
			BankName:      "First Bank",
			AccountType:   "checking",
		}
		envelope := &cryptoDomain.BankAccountEnvelope{LastFour: "6789", BankName: "First Bank"}
		data := &cryptoDomain.BankAccountData{BankName: "First Bank", LastFour: "6789"}

		key := f.expectFamilyKey()
		f.encryption.On("EncryptBankAccountData", mock.Anything, credentials, key).Return(envelope, nil).Once()
		f.expectOperation("encrypt_bank_account", "bank_accounts", true)

		got, err := f.vault.EncryptBankAccount(context.Background(), actor, credentials)
		require.NoError(t, err)
		assert.Equal(t, "6789", got.LastFour)

		key = f.expectFamilyKey()
		f.encryption.On("DecryptBankAccountData", mock.Anything, envelope, key).Return(data, nil).Once()
		f.expectOperation("decrypt_bank_account", "bank_accounts", true)

		decrypted, err := f.vault.DecryptBankAccount(context.Background(), actor, envelope)
		require.NoError(t, err)
		assert.Equal(t, "First Bank", decrypted.BankName)
	})

	t.Run("VerifyNumbers", func(t *testing.T) {
		envelope := &cryptoDomain.BankAccountEnvelope{
			AccountNumberHash: "acct-hash",
			RoutingNumberHash: "routing-hash",
			LastFour:          "6789",
		}

		t.Run("Match", func(t *testing.T) {
			f := newVaultFixture(t)
			f.encryption.On("VerifySensitiveDataHash", mock.Anything, "123456789", "acct-hash").Return(true).Once()
			f.encryption.On("VerifySensitiveDataHash", mock.Anything, "021000021", "routing-hash").Return(true).Once()

			assert.True(t, f.vault.VerifyBankAccountNumbers(context.Background(), actor, "123456789", "021000021", envelope))
		})

		t.Run("AccountOnly", func(t *testing.T) {
			f := newVaultFixture(t)
			f.encryption.On("VerifySensitiveDataHash", mock.Anything, "123456789", "acct-hash").Return(true).Once()

			assert.True(t, f.vault.VerifyBankAccountNumbers(context.Background(), actor, "123456789", "", envelope))
		})

		t.Run("RoutingMismatch", func(t *testing.T) {
			f := newVaultFixture(t)
			f.encryption.On("VerifySensitiveDataHash", mock.Anything, "123456789", "acct-hash").Return(true).Once()
			f.encryption.On("VerifySensitiveDataHash", mock.Anything, "999999999", "routing-hash").Return(false).Once()
			f.expectSecurityEvent(usecase.EventBankAccountMismatch, auditDomain.RiskMedium)

			assert.False(t, f.vault.VerifyBankAccountNumbers(context.Background(), actor, "123456789", "999999999", envelope))
		})

		t.Run("NilEnvelope", func(t *testing.T) {
			f := newVaultFixture(t)
			assert.False(t, f.vault.VerifyBankAccountNumbers(context.Background(), actor, "123456789", "", nil))
		})
	})
}

func TestVaultUseCase_UserPII(t *testing.T) {
	t.Run("Encrypt", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		pii := &cryptoDomain.UserPII{FullName: "Ada Lovelace"}
		envelope := &cryptoDomain.UserPIIEnvelope{}
		f.encryption.On("EncryptUserPII", mock.Anything, pii, key).Return(envelope, nil).Once()
		f.expectOperation("encrypt_user_pii", "profiles", true)

		got, err := f.vault.EncryptUserPII(context.Background(), actor, pii)

		require.NoError(t, err)
		assert.Same(t, envelope, got)
	})

	t.Run("DecryptRecordsAccess", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		envelope := &cryptoDomain.UserPIIEnvelope{}
		f.encryption.On("DecryptUserPII", mock.Anything, envelope, key).
			Return(&cryptoDomain.UserPII{FullName: "Ada Lovelace"}, nil).
			Once()
		f.expectOperation("decrypt_user_pii", "profiles", true)
		f.expectSecurityEvent(usecase.EventPIIAccess, auditDomain.RiskMedium)

		pii, err := f.vault.DecryptUserPII(context.Background(), actor, envelope)

		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", pii.FullName)
	})

	t.Run("DecryptFailureRecordsNoAccess", func(t *testing.T) {
		f := newVaultFixture(t)
		key := f.expectFamilyKey()

		envelope := &cryptoDomain.UserPIIEnvelope{}
		f.encryption.On("DecryptUserPII", mock.Anything, envelope, key).
			Return(nil, cryptoDomain.ErrMalformedPayload).
			Once()
		f.expectOperation("decrypt_user_pii", "profiles", false)
		f.expectSecurityEvent(usecase.EventDecryptionFailure, auditDomain.RiskHigh)

		_, err := f.vault.DecryptUserPII(context.Background(), actor, envelope)

		assert.ErrorIs(t, err, cryptoDomain.ErrMalformedPayload)
	})
}

func TestVaultUseCase_LegacyHelpers(t *testing.T) {
	t.Run("SensitiveData", func(t *testing.T) {
		f := newVaultFixture(t)

		blob := &cryptoDomain.EncryptedBlob{DataType: cryptoDomain.DataTypeSensitiveData}
		f.encryption.On("EncryptSensitiveData", mock.Anything, "note").Return(blob, nil).Once()
		f.encryption.On("DecryptSensitiveData", mock.Anything, blob).Return("note", nil).Once()
		f.expectOperation("encrypt_sensitive_data", "sensitive_data", true)
		f.expectOperation("decrypt_sensitive_data", "sensitive_data", true)

		got, err := f.vault.EncryptSensitiveData(context.Background(), actor, "note")
		require.NoError(t, err)

		plaintext, err := f.vault.DecryptSensitiveData(context.Background(), actor, got)
		require.NoError(t, err)
		assert.Equal(t, "note", plaintext)
		f.salts.AssertNotCalled(t, "GetUserSalt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Amount", func(t *testing.T) {
		f := newVaultFixture(t)

		blob := &cryptoDomain.EncryptedBlob{DataType: cryptoDomain.DataTypeAmount}
		f.encryption.On("EncryptAmount", mock.Anything, 99.99).Return(blob, nil).Once()
		f.encryption.On("DecryptAmount", mock.Anything, blob).Return(0.0, cryptoDomain.ErrMasterKeyClosed).Once()
		f.expectOperation("encrypt_amount", "transactions", true)
		f.expectOperation("decrypt_amount", "transactions", false)

		_, err := f.vault.EncryptAmount(context.Background(), actor, 99.99)
		require.NoError(t, err)

		_, err = f.vault.DecryptAmount(context.Background(), actor, blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyClosed)
	})

	t.Run("Hash", func(t *testing.T) {
		f := newVaultFixture(t)
		f.encryption.On("HashSensitiveData", mock.Anything, "secret").Return("salt:hash", nil).Once()
		f.encryption.On("VerifySensitiveDataHash", mock.Anything, "secret", "salt:hash").Return(true).Once()

		stored, err := f.vault.HashSensitiveData(context.Background(), "secret")
		require.NoError(t, err)
		assert.True(t, f.vault.VerifySensitiveDataHash(context.Background(), "secret", stored))
	})
}
