// Package usecase implements the domain encryptors: financial amounts, bank account
// credentials, user PII and the global-key helpers for legacy values.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoService "github.com/allisson/finvault/internal/crypto/service"
	apperrors "github.com/allisson/finvault/internal/errors"
	customValidation "github.com/allisson/finvault/internal/validation"
)

// encryptionUseCase implements EncryptionUseCase.
type encryptionUseCase struct {
	sealer     cryptoService.Sealer
	deriver    cryptoService.KeyDeriver
	hasher     cryptoService.SensitiveHasher
	familyKeys cryptoService.FamilyKeyGenerator
	masterKey  *cryptoDomain.MasterKey
	algorithm  cryptoDomain.Algorithm
	now        func() time.Time
}

// GenerateFamilyKey derives the family secret for familyID and the user's stored salt.
func (e *encryptionUseCase) GenerateFamilyKey(
	ctx context.Context,
	familyID, userSalt string,
) (cryptoDomain.FamilyKey, error) {
	return e.familyKeys.GenerateFamilyKey(familyID, userSalt)
}

// EncryptFinancialAmount validates and encrypts an amount. The plaintext embeds a checksum
// of {amount, currency} which DecryptFinancialAmount verifies after the AEAD tag.
func (e *encryptionUseCase) EncryptFinancialAmount(
	ctx context.Context,
	amount float64,
	currency string,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmountEnvelope, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return nil, err
	}

	checksum, err := cryptoService.CreateDataChecksum(amountChecksumData(amount, currency))
	if err != nil {
		return nil, err
	}
	plaintext, err := json.Marshal(cryptoDomain.FinancialAmount{
		Amount:    amount,
		Currency:  currency,
		Timestamp: e.now().UTC(),
		Checksum:  checksum,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal financial amount: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	blob, err := e.sealWithFamilyKey(cryptoDomain.DataTypeFinancialAmount, plaintext, familyKey)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.FinancialAmountEnvelope{EncryptedBlob: *blob, Currency: currency}, nil
}

// DecryptFinancialAmount verifies the tag, then the embedded checksum. The cleartext
// currency on the envelope must agree with the encrypted one.
func (e *encryptionUseCase) DecryptFinancialAmount(
	ctx context.Context,
	envelope *cryptoDomain.FinancialAmountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.FinancialAmount, error) {
	if envelope == nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	plaintext, err := e.openWithFamilyKey(
		&envelope.EncryptedBlob,
		cryptoDomain.DataTypeFinancialAmount,
		familyKey,
	)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	var record cryptoDomain.FinancialAmount
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, cryptoDomain.ErrMalformedPayload
	}

	if !cryptoService.VerifyDataChecksum(amountChecksumData(record.Amount, record.Currency), record.Checksum) {
		return nil, cryptoDomain.ErrChecksumMismatch
	}
	if envelope.Currency != "" && envelope.Currency != record.Currency {
		return nil, cryptoDomain.ErrChecksumMismatch
	}

	return &record, nil
}

// EncryptBankAccountData hashes the full account and routing numbers and encrypts the
// retrievable metadata. The full numbers are never part of any encrypted payload.
func (e *encryptionUseCase) EncryptBankAccountData(
	ctx context.Context,
	credentials *cryptoDomain.BankAccountCredentials,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountEnvelope, error) {
	if err := validateBankAccount(credentials); err != nil {
		return nil, err
	}

	accountHash, err := e.hasher.HashSensitiveData(credentials.AccountNumber)
	if err != nil {
		return nil, err
	}
	routingHash, err := e.hasher.HashSensitiveData(credentials.RoutingNumber)
	if err != nil {
		return nil, err
	}

	lastFour := credentials.AccountNumber[len(credentials.AccountNumber)-4:]
	data := cryptoDomain.BankAccountData{
		BankName:    credentials.BankName,
		AccountType: credentials.AccountType,
		Nickname:    credentials.Nickname,
		LastFour:    lastFour,
		Metadata:    credentials.Metadata,
	}
	plaintext, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bank account data: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	blob, err := e.sealWithFamilyKey(cryptoDomain.DataTypeBankAccount, plaintext, familyKey)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.BankAccountEnvelope{
		EncryptedBlob:     *blob,
		AccountNumberHash: accountHash,
		RoutingNumberHash: routingHash,
		LastFour:          lastFour,
		BankName:          credentials.BankName,
		AccountType:       credentials.AccountType,
	}, nil
}

// DecryptBankAccountData returns the encrypted metadata. Hashes stay on the envelope.
func (e *encryptionUseCase) DecryptBankAccountData(
	ctx context.Context,
	envelope *cryptoDomain.BankAccountEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.BankAccountData, error) {
	if envelope == nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	plaintext, err := e.openWithFamilyKey(&envelope.EncryptedBlob, cryptoDomain.DataTypeBankAccount, familyKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	var data cryptoDomain.BankAccountData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, cryptoDomain.ErrMalformedPayload
	}
	return &data, nil
}

// EncryptUserPII encrypts the whole PII bundle. No field is kept in clear.
func (e *encryptionUseCase) EncryptUserPII(
	ctx context.Context,
	pii *cryptoDomain.UserPII,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPIIEnvelope, error) {
	if pii == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "user pii is required")
	}

	plaintext, err := json.Marshal(pii)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user pii: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	blob, err := e.sealWithFamilyKey(cryptoDomain.DataTypeUserPII, plaintext, familyKey)
	if err != nil {
		return nil, err
	}
	return &cryptoDomain.UserPIIEnvelope{EncryptedBlob: *blob}, nil
}

// DecryptUserPII mirrors EncryptUserPII.
func (e *encryptionUseCase) DecryptUserPII(
	ctx context.Context,
	envelope *cryptoDomain.UserPIIEnvelope,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.UserPII, error) {
	if envelope == nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	plaintext, err := e.openWithFamilyKey(&envelope.EncryptedBlob, cryptoDomain.DataTypeUserPII, familyKey)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	var pii cryptoDomain.UserPII
	if err := json.Unmarshal(plaintext, &pii); err != nil {
		return nil, cryptoDomain.ErrMalformedPayload
	}
	return &pii, nil
}

// EncryptSensitiveData encrypts plaintext with the master key. The envelope has no salt.
func (e *encryptionUseCase) EncryptSensitiveData(
	ctx context.Context,
	plaintext string,
) (*cryptoDomain.EncryptedBlob, error) {
	return e.sealWithMasterKey(cryptoDomain.DataTypeSensitiveData, []byte(plaintext))
}

// DecryptSensitiveData mirrors EncryptSensitiveData.
func (e *encryptionUseCase) DecryptSensitiveData(
	ctx context.Context,
	blob *cryptoDomain.EncryptedBlob,
) (string, error) {
	plaintext, err := e.openWithMasterKey(blob, cryptoDomain.DataTypeSensitiveData)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptAmount encrypts a bare amount with the master key. Only non-finite values are
// rejected; legacy amounts may be negative.
func (e *encryptionUseCase) EncryptAmount(ctx context.Context, amount float64) (*cryptoDomain.EncryptedBlob, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, cryptoDomain.ErrInvalidAmount
	}
	return e.sealWithMasterKey(cryptoDomain.DataTypeAmount, []byte(strconv.FormatFloat(amount, 'f', -1, 64)))
}

// DecryptAmount mirrors EncryptAmount.
func (e *encryptionUseCase) DecryptAmount(ctx context.Context, blob *cryptoDomain.EncryptedBlob) (float64, error) {
	plaintext, err := e.openWithMasterKey(blob, cryptoDomain.DataTypeAmount)
	if err != nil {
		return 0, err
	}
	amount, err := strconv.ParseFloat(string(plaintext), 64)
	if err != nil {
		return 0, cryptoDomain.ErrMalformedPayload
	}
	return amount, nil
}

// HashSensitiveData returns a salted PBKDF2 hash in "saltHex:hashHex" form.
func (e *encryptionUseCase) HashSensitiveData(ctx context.Context, data string) (string, error) {
	return e.hasher.HashSensitiveData(data)
}

// VerifySensitiveDataHash compares data against a stored hash in constant time.
func (e *encryptionUseCase) VerifySensitiveDataHash(ctx context.Context, data, stored string) bool {
	return e.hasher.VerifySensitiveDataHash(data, stored)
}

func (e *encryptionUseCase) sealWithFamilyKey(
	dataType cryptoDomain.DataType,
	plaintext []byte,
	familyKey cryptoDomain.FamilyKey,
) (*cryptoDomain.EncryptedBlob, error) {
	if familyKey.IsZero() {
		return nil, cryptoDomain.ErrEmptyFamilyKey
	}

	salt := make([]byte, cryptoDomain.KDFSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key := e.deriver.DeriveKey(familyKey.Bytes(), salt)
	defer cryptoDomain.Zero(key)

	blob, err := e.seal(key, dataType, plaintext)
	if err != nil {
		return nil, err
	}
	blob.Salt = hex.EncodeToString(salt)
	return blob, nil
}

func (e *encryptionUseCase) openWithFamilyKey(
	blob *cryptoDomain.EncryptedBlob,
	dataType cryptoDomain.DataType,
	familyKey cryptoDomain.FamilyKey,
) ([]byte, error) {
	if familyKey.IsZero() {
		return nil, cryptoDomain.ErrEmptyFamilyKey
	}

	salt, err := hex.DecodeString(blob.Salt)
	if err != nil || len(salt) != cryptoDomain.KDFSaltSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	key := e.deriver.DeriveKey(familyKey.Bytes(), salt)
	defer cryptoDomain.Zero(key)

	return e.open(key, blob, dataType)
}

func (e *encryptionUseCase) sealWithMasterKey(
	dataType cryptoDomain.DataType,
	plaintext []byte,
) (*cryptoDomain.EncryptedBlob, error) {
	if e.masterKey == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}

	var blob *cryptoDomain.EncryptedBlob
	err := e.masterKey.Use(func(key []byte) error {
		var err error
		blob, err = e.seal(key, dataType, plaintext)
		return err
	})
	return blob, err
}

func (e *encryptionUseCase) openWithMasterKey(
	blob *cryptoDomain.EncryptedBlob,
	dataType cryptoDomain.DataType,
) ([]byte, error) {
	if e.masterKey == nil {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}
	if blob == nil {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	var plaintext []byte
	err := e.masterKey.Use(func(key []byte) error {
		var err error
		plaintext, err = e.open(key, blob, dataType)
		return err
	})
	return plaintext, err
}

func (e *encryptionUseCase) seal(
	key []byte,
	dataType cryptoDomain.DataType,
	plaintext []byte,
) (*cryptoDomain.EncryptedBlob, error) {
	payload, err := e.sealer.Seal(key, e.algorithm, plaintext, []byte(dataType))
	if err != nil {
		return nil, err
	}
	return &cryptoDomain.EncryptedBlob{
		Ciphertext:  hex.EncodeToString(payload.Ciphertext),
		IV:          hex.EncodeToString(payload.IV),
		Tag:         hex.EncodeToString(payload.Tag),
		Algorithm:   e.algorithm,
		EncryptedAt: e.now().UTC(),
		DataType:    dataType,
	}, nil
}

// open always authenticates against the expected data type, not the one recorded on
// the envelope.
func (e *encryptionUseCase) open(
	key []byte,
	blob *cryptoDomain.EncryptedBlob,
	dataType cryptoDomain.DataType,
) ([]byte, error) {
	ciphertext, err := hex.DecodeString(blob.Ciphertext)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	iv, err := hex.DecodeString(blob.IV)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	tag, err := hex.DecodeString(blob.Tag)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	payload := &cryptoDomain.SealedPayload{Ciphertext: ciphertext, IV: iv, Tag: tag}
	return e.sealer.Open(key, blob.AlgorithmOrDefault(), payload, []byte(dataType))
}

func amountChecksumData(amount float64, currency string) map[string]any {
	return map[string]any{"amount": amount, "currency": currency}
}

// validateAmount accepts finite values in [0, MaxFinancialAmount] whose shortest decimal
// form has at most two fractional digits.
func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperrors.Wrap(cryptoDomain.ErrInvalidAmount, "amount must be finite")
	}
	if amount < 0 {
		return apperrors.Wrap(cryptoDomain.ErrInvalidAmount, "amount must not be negative")
	}
	if amount > cryptoDomain.MaxFinancialAmount {
		return apperrors.Wrap(cryptoDomain.ErrInvalidAmount, "amount exceeds maximum")
	}
	formatted := strconv.FormatFloat(amount, 'f', -1, 64)
	if _, frac, ok := strings.Cut(formatted, "."); ok && len(frac) > 2 {
		return apperrors.Wrap(cryptoDomain.ErrInvalidAmount, "amount has more than two decimal places")
	}
	return nil
}

func normalizeCurrency(currency string) (string, error) {
	if err := validation.Validate(currency, validation.Required, customValidation.CurrencyCode); err != nil {
		return "", apperrors.Wrap(cryptoDomain.ErrInvalidCurrency, err.Error())
	}
	return strings.ToUpper(currency), nil
}

func validateBankAccount(c *cryptoDomain.BankAccountCredentials) error {
	if c == nil {
		return cryptoDomain.ErrInvalidBankAccount
	}
	err := validation.ValidateStruct(c,
		validation.Field(&c.AccountNumber, validation.Required, validation.Length(4, 17), customValidation.Digits),
		validation.Field(&c.RoutingNumber, validation.Required, validation.Length(9, 9), customValidation.Digits),
		validation.Field(&c.BankName, validation.Required, customValidation.NotBlank),
		validation.Field(&c.AccountType, validation.Required, customValidation.NotBlank),
	)
	if err != nil {
		return apperrors.Wrap(cryptoDomain.ErrInvalidBankAccount, err.Error())
	}
	return nil
}

// NewEncryptionUseCase creates the encryption use case. algorithm is used for new
// envelopes; existing envelopes are opened with the algorithm they record.
func NewEncryptionUseCase(
	sealer cryptoService.Sealer,
	deriver cryptoService.KeyDeriver,
	hasher cryptoService.SensitiveHasher,
	familyKeys cryptoService.FamilyKeyGenerator,
	masterKey *cryptoDomain.MasterKey,
	algorithm cryptoDomain.Algorithm,
) EncryptionUseCase {
	if algorithm == "" {
		algorithm = cryptoDomain.AESGCM
	}
	return &encryptionUseCase{
		sealer:     sealer,
		deriver:    deriver,
		hasher:     hasher,
		familyKeys: familyKeys,
		masterKey:  masterKey,
		algorithm:  algorithm,
		now:        time.Now,
	}
}
