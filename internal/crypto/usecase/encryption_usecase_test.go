package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoService "github.com/allisson/finvault/internal/crypto/service"
	apperrors "github.com/allisson/finvault/internal/errors"
)

const testMasterKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"

func newTestUseCase(t *testing.T, alg cryptoDomain.Algorithm) (*encryptionUseCase, *cryptoDomain.MasterKey) {
	t.Helper()
	masterKey, err := cryptoDomain.ParseMasterKeyHex(testMasterKeyHex)
	require.NoError(t, err)

	deriver := cryptoService.NewKeyDeriver()
	uc := NewEncryptionUseCase(
		cryptoService.NewDetachedSealer(cryptoService.NewAEADManager()),
		deriver,
		cryptoService.NewPBKDF2Hasher(deriver),
		cryptoService.NewFamilyKeyService(masterKey),
		masterKey,
		alg,
	).(*encryptionUseCase)
	return uc, masterKey
}

func familyKey(t *testing.T, uc *encryptionUseCase, familyID, userSalt string) cryptoDomain.FamilyKey {
	t.Helper()
	key, err := uc.GenerateFamilyKey(context.Background(), familyID, userSalt)
	require.NoError(t, err)
	return key
}

func TestEncryptionUseCase_FinancialAmount(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }
	key := familyKey(t, uc, "fam-1", "abc123")

	t.Run("Success_ConcreteScenario", func(t *testing.T) {
		envelope, err := uc.EncryptFinancialAmount(ctx, 1234.56, "USD", key)
		require.NoError(t, err)

		assert.Equal(t, "USD", envelope.Currency)
		assert.Equal(t, cryptoDomain.DataTypeFinancialAmount, envelope.DataType)
		assert.Equal(t, cryptoDomain.AESGCM, envelope.Algorithm)
		assert.Equal(t, fixed, envelope.EncryptedAt)
		assert.Len(t, envelope.IV+envelope.Tag, 64)
		assert.Len(t, envelope.Salt, 64)

		record, err := uc.DecryptFinancialAmount(ctx, envelope, key)
		require.NoError(t, err)
		assert.Equal(t, 1234.56, record.Amount)
		assert.Equal(t, "USD", record.Currency)
		assert.Equal(t, fixed, record.Timestamp)
		assert.Len(t, record.Checksum, 64)

		otherKey := familyKey(t, uc, "fam-2", "abc123")
		wrong, err := uc.DecryptFinancialAmount(ctx, envelope, otherKey)
		assert.ErrorIs(t, err, apperrors.ErrIntegrity)
		assert.Nil(t, wrong)
	})

	t.Run("Success_RoundTrip", func(t *testing.T) {
		for _, amount := range []float64{0, 0.01, 0.1, 1, 10.5, 99.99, 1000000, 123456789.12, 999999999.99} {
			envelope, err := uc.EncryptFinancialAmount(ctx, amount, "eur", key)
			require.NoError(t, err, amount)
			assert.Equal(t, "EUR", envelope.Currency)

			record, err := uc.DecryptFinancialAmount(ctx, envelope, key)
			require.NoError(t, err, amount)
			assert.Equal(t, amount, record.Amount)
			assert.Equal(t, "EUR", record.Currency)
		}
	})

	t.Run("Success_NonDeterministic", func(t *testing.T) {
		e1, err := uc.EncryptFinancialAmount(ctx, 42.5, "USD", key)
		require.NoError(t, err)
		e2, err := uc.EncryptFinancialAmount(ctx, 42.5, "USD", key)
		require.NoError(t, err)

		assert.NotEqual(t, e1.Ciphertext, e2.Ciphertext)
		assert.NotEqual(t, e1.Salt, e2.Salt)
		assert.NotEqual(t, e1.IV, e2.IV)
	})

	t.Run("Error_InvalidAmount", func(t *testing.T) {
		for _, amount := range []float64{-0.01, 1000000000, 999999999.991, 1.234, 0.001} {
			_, err := uc.EncryptFinancialAmount(ctx, amount, "USD", key)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidAmount, amount)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, amount)
		}
	})

	t.Run("Error_InvalidCurrency", func(t *testing.T) {
		for _, currency := range []string{"", "US", "USDT", "U$D", "123"} {
			_, err := uc.EncryptFinancialAmount(ctx, 10, currency, key)
			assert.ErrorIs(t, err, cryptoDomain.ErrInvalidCurrency, currency)
		}
	})

	t.Run("Error_EmptyFamilyKey", func(t *testing.T) {
		_, err := uc.EncryptFinancialAmount(ctx, 10, "USD", cryptoDomain.FamilyKey{})
		assert.ErrorIs(t, err, cryptoDomain.ErrEmptyFamilyKey)
	})

	t.Run("Error_NilEnvelope", func(t *testing.T) {
		_, err := uc.DecryptFinancialAmount(ctx, nil, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidEnvelope)
	})

	t.Run("Error_CurrencyTampered", func(t *testing.T) {
		envelope, err := uc.EncryptFinancialAmount(ctx, 10, "USD", key)
		require.NoError(t, err)
		envelope.Currency = "EUR"

		_, err = uc.DecryptFinancialAmount(ctx, envelope, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrChecksumMismatch)
	})
}

func flipHex(s string, index int) string {
	b := []byte(s)
	if b[index] == '0' {
		b[index] = '1'
	} else {
		b[index] = '0'
	}
	return string(b)
}

func TestEncryptionUseCase_TamperDetection(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)
	key := familyKey(t, uc, "fam-1", "abc123")

	envelope, err := uc.EncryptFinancialAmount(ctx, 1234.56, "USD", key)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(e *cryptoDomain.FinancialAmountEnvelope)
	}{
		{name: "ciphertext first byte", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Ciphertext = flipHex(e.Ciphertext, 0) }},
		{name: "ciphertext last byte", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) {
			e.Ciphertext = flipHex(e.Ciphertext, len(e.Ciphertext)-1)
		}},
		{name: "iv", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.IV = flipHex(e.IV, 5) }},
		{name: "tag", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Tag = flipHex(e.Tag, 31) }},
		{name: "salt", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Salt = flipHex(e.Salt, 10) }},
		{name: "truncated tag", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Tag = e.Tag[:30] }},
		{name: "malformed iv hex", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.IV = "zz" + e.IV[2:] }},
		{name: "odd length ciphertext", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Ciphertext += "a" }},
		{name: "unknown algorithm", mutate: func(e *cryptoDomain.FinancialAmountEnvelope) { e.Algorithm = "aes-cbc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := *envelope
			tt.mutate(&tampered)

			record, err := uc.DecryptFinancialAmount(ctx, &tampered, key)
			assert.ErrorIs(t, err, apperrors.ErrIntegrity)
			assert.Nil(t, record)
		})
	}

	t.Run("other domain", func(t *testing.T) {
		pii := &cryptoDomain.UserPIIEnvelope{EncryptedBlob: envelope.EncryptedBlob}
		_, err := uc.DecryptUserPII(ctx, pii, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

func TestEncryptionUseCase_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)
	key := familyKey(t, uc, "fam-1", "abc123")

	// A payload with a valid tag but a checksum that does not cover its contents.
	plaintext, err := json.Marshal(cryptoDomain.FinancialAmount{
		Amount:   100,
		Currency: "USD",
		Checksum: strings.Repeat("0", 64),
	})
	require.NoError(t, err)
	blob, err := uc.sealWithFamilyKey(cryptoDomain.DataTypeFinancialAmount, plaintext, key)
	require.NoError(t, err)

	_, err = uc.DecryptFinancialAmount(ctx, &cryptoDomain.FinancialAmountEnvelope{EncryptedBlob: *blob}, key)
	assert.ErrorIs(t, err, cryptoDomain.ErrChecksumMismatch)
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)

	blob, err = uc.sealWithFamilyKey(cryptoDomain.DataTypeFinancialAmount, []byte("not json"), key)
	require.NoError(t, err)
	_, err = uc.DecryptFinancialAmount(ctx, &cryptoDomain.FinancialAmountEnvelope{EncryptedBlob: *blob}, key)
	assert.ErrorIs(t, err, cryptoDomain.ErrMalformedPayload)
}

func TestEncryptionUseCase_BankAccount(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)
	key := familyKey(t, uc, "fam-1", "abc123")

	credentials := func() *cryptoDomain.BankAccountCredentials {
		return &cryptoDomain.BankAccountCredentials{
			AccountNumber: "000123456789",
			RoutingNumber: "021000021",
			BankName:      "Test Bank",
			AccountType:   "checking",
			Nickname:      "Household",
			Metadata:      map[string]any{"opened": "2020"},
		}
	}

	t.Run("Success_ConcreteScenario", func(t *testing.T) {
		e1, err := uc.EncryptBankAccountData(ctx, credentials(), key)
		require.NoError(t, err)
		e2, err := uc.EncryptBankAccountData(ctx, credentials(), key)
		require.NoError(t, err)

		assert.Equal(t, "6789", e1.LastFour)
		assert.Equal(t, "Test Bank", e1.BankName)
		assert.Equal(t, "checking", e1.AccountType)
		assert.NotEqual(t, e1.AccountNumberHash, e2.AccountNumberHash)
		assert.NotEqual(t, e1.RoutingNumberHash, e2.RoutingNumberHash)

		assert.True(t, uc.VerifySensitiveDataHash(ctx, "000123456789", e1.AccountNumberHash))
		assert.True(t, uc.VerifySensitiveDataHash(ctx, "021000021", e1.RoutingNumberHash))
		assert.False(t, uc.VerifySensitiveDataHash(ctx, "000123456780", e1.AccountNumberHash))

		raw, err := json.Marshal(e1)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "000123456789")
		assert.NotContains(t, string(raw), "021000021")

		data, err := uc.DecryptBankAccountData(ctx, e1, key)
		require.NoError(t, err)
		assert.Equal(t, "Test Bank", data.BankName)
		assert.Equal(t, "checking", data.AccountType)
		assert.Equal(t, "Household", data.Nickname)
		assert.Equal(t, "6789", data.LastFour)
		assert.Equal(t, "2020", data.Metadata["opened"])
	})

	t.Run("Error_Validation", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(c *cryptoDomain.BankAccountCredentials)
		}{
			{name: "short account number", mutate: func(c *cryptoDomain.BankAccountCredentials) { c.AccountNumber = "123" }},
			{name: "long account number", mutate: func(c *cryptoDomain.BankAccountCredentials) {
				c.AccountNumber = strings.Repeat("1", 18)
			}},
			{name: "non digit account", mutate: func(c *cryptoDomain.BankAccountCredentials) { c.AccountNumber = "12ab5678" }},
			{name: "short routing number", mutate: func(c *cryptoDomain.BankAccountCredentials) { c.RoutingNumber = "02100002" }},
			{name: "missing bank name", mutate: func(c *cryptoDomain.BankAccountCredentials) { c.BankName = "  " }},
			{name: "missing account type", mutate: func(c *cryptoDomain.BankAccountCredentials) { c.AccountType = "" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c := credentials()
				tt.mutate(c)
				_, err := uc.EncryptBankAccountData(ctx, c, key)
				assert.ErrorIs(t, err, cryptoDomain.ErrInvalidBankAccount)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			})
		}

		_, err := uc.EncryptBankAccountData(ctx, nil, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidBankAccount)
	})
}

func TestEncryptionUseCase_UserPII(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.ChaCha20)
	key := familyKey(t, uc, "fam-1", "abc123")

	pii := &cryptoDomain.UserPII{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-01-01",
		SSN:         "123-45-6789",
		EmergencyContact: &cryptoDomain.EmergencyContact{
			Name:         "John Doe",
			Relationship: "spouse",
		},
	}

	t.Run("Success_RoundTrip", func(t *testing.T) {
		envelope, err := uc.EncryptUserPII(ctx, pii, key)
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.ChaCha20, envelope.Algorithm)

		raw, err := json.Marshal(envelope)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Jane")
		assert.NotContains(t, string(raw), "123-45-6789")

		decrypted, err := uc.DecryptUserPII(ctx, envelope, key)
		require.NoError(t, err)
		assert.Equal(t, pii, decrypted)
	})

	t.Run("Success_EmptyBundle", func(t *testing.T) {
		envelope, err := uc.EncryptUserPII(ctx, &cryptoDomain.UserPII{}, key)
		require.NoError(t, err)
		decrypted, err := uc.DecryptUserPII(ctx, envelope, key)
		require.NoError(t, err)
		assert.True(t, decrypted.IsEmpty())
	})

	t.Run("Error_Nil", func(t *testing.T) {
		_, err := uc.EncryptUserPII(ctx, nil, key)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEncryptionUseCase_GlobalKeyMode(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)

	t.Run("Success_SensitiveData", func(t *testing.T) {
		blob, err := uc.EncryptSensitiveData(ctx, "legacy secret")
		require.NoError(t, err)
		assert.Empty(t, blob.Salt)
		assert.Equal(t, cryptoDomain.DataTypeSensitiveData, blob.DataType)

		plaintext, err := uc.DecryptSensitiveData(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, "legacy secret", plaintext)
	})

	t.Run("Success_Amount", func(t *testing.T) {
		blob, err := uc.EncryptAmount(ctx, -15.75)
		require.NoError(t, err)
		amount, err := uc.DecryptAmount(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, -15.75, amount)

		_, err = uc.DecryptSensitiveData(ctx, blob)
		assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	})

	t.Run("Error_NonFiniteAmount", func(t *testing.T) {
		_, err := uc.EncryptAmount(ctx, math.Inf(1))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidAmount)
	})

	t.Run("Error_DifferentMasterKey", func(t *testing.T) {
		blob, err := uc.EncryptSensitiveData(ctx, "legacy secret")
		require.NoError(t, err)

		other, err := cryptoDomain.ParseMasterKeyHex(strings.Repeat("ff", 32))
		require.NoError(t, err)
		uc2, _ := newTestUseCase(t, cryptoDomain.AESGCM)
		uc2.masterKey = other

		_, err = uc2.DecryptSensitiveData(ctx, blob)
		assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	})

	t.Run("Error_MasterKeyNotSet", func(t *testing.T) {
		uc2, _ := newTestUseCase(t, cryptoDomain.AESGCM)
		uc2.masterKey = nil

		_, err := uc2.EncryptSensitiveData(ctx, "x")
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
		_, err = uc2.DecryptAmount(ctx, &cryptoDomain.EncryptedBlob{})
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("Error_ClosedMasterKey", func(t *testing.T) {
		uc2, mk := newTestUseCase(t, cryptoDomain.AESGCM)
		blob, err := uc2.EncryptSensitiveData(ctx, "x")
		require.NoError(t, err)
		mk.Close()

		_, err = uc2.EncryptSensitiveData(ctx, "x")
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyClosed)
		_, err = uc2.DecryptSensitiveData(ctx, blob)
		assert.ErrorIs(t, err, cryptoDomain.ErrMasterKeyClosed)
	})

	t.Run("Error_NilBlob", func(t *testing.T) {
		_, err := uc.DecryptSensitiveData(ctx, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidEnvelope)
	})
}

func TestEncryptionUseCase_AlgorithmCompatibility(t *testing.T) {
	ctx := context.Background()
	aesUC, _ := newTestUseCase(t, cryptoDomain.AESGCM)
	chachaUC, _ := newTestUseCase(t, cryptoDomain.ChaCha20)
	key := familyKey(t, aesUC, "fam-1", "abc123")

	envelope, err := aesUC.EncryptFinancialAmount(ctx, 5, "USD", key)
	require.NoError(t, err)
	envelope.Algorithm = ""

	// Envelopes without an algorithm are read as AES-GCM regardless of the configured default.
	record, err := chachaUC.DecryptFinancialAmount(ctx, envelope, key)
	require.NoError(t, err)
	assert.Equal(t, 5.0, record.Amount)

	envelope.Algorithm = "rot13"
	_, err = chachaUC.DecryptFinancialAmount(ctx, envelope, key)
	assert.True(t, errors.Is(err, cryptoDomain.ErrDecryptionFailed))
	assert.True(t, errors.Is(err, apperrors.ErrIntegrity))
}

func TestEncryptionUseCase_GenerateFamilyKey(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t, cryptoDomain.AESGCM)

	k1, err := uc.GenerateFamilyKey(ctx, "fam-1", "abc123")
	require.NoError(t, err)
	k2, err := uc.GenerateFamilyKey(ctx, "fam-1", "abc123")
	require.NoError(t, err)
	assert.Equal(t, k1.Bytes(), k2.Bytes())

	_, err = uc.GenerateFamilyKey(ctx, "fam-1", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
