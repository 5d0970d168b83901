package domain

import (
	"github.com/allisson/finvault/internal/errors"
)

// Configuration errors abort an operation before any data is read or written.
var (
	// ErrMasterKeyNotSet indicates ENCRYPTION_MASTER_KEY is empty.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrConfiguration, "master encryption key not set")

	// ErrInvalidMasterKey indicates the master key is not 64 hex characters (32 bytes),
	// or that a KMS-wrapped master key did not unwrap to 32 bytes.
	ErrInvalidMasterKey = errors.Wrap(errors.ErrConfiguration, "invalid master encryption key")

	// ErrKMSUnwrapFailed indicates the KMS keeper could not decrypt the master key.
	ErrKMSUnwrapFailed = errors.Wrap(errors.ErrConfiguration, "failed to unwrap master key with KMS")

	// ErrMasterKeyClosed indicates the master key was zeroed during shutdown.
	ErrMasterKeyClosed = errors.Wrap(errors.ErrConfiguration, "master encryption key closed")
)

// Validation errors are raised before any cryptographic work starts.
var (
	// ErrUnsupportedAlgorithm indicates the requested algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a cipher key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidAmount indicates the amount is non-finite, negative, above
	// MaxFinancialAmount or carries more than two decimal places.
	ErrInvalidAmount = errors.Wrap(errors.ErrInvalidInput, "invalid financial amount")

	// ErrInvalidCurrency indicates the currency is not a three letter code.
	ErrInvalidCurrency = errors.Wrap(errors.ErrInvalidInput, "invalid currency code")

	// ErrInvalidBankAccount indicates malformed bank account credentials.
	ErrInvalidBankAccount = errors.Wrap(errors.ErrInvalidInput, "invalid bank account data")

	// ErrInvalidFamilyKeyInput indicates an empty family id or user salt.
	ErrInvalidFamilyKeyInput = errors.Wrap(errors.ErrInvalidInput, "family id and user salt are required")

	// ErrEmptyFamilyKey indicates an encryptor was called without key material.
	ErrEmptyFamilyKey = errors.Wrap(errors.ErrInvalidInput, "family key is empty")

	// ErrInvalidEnvelope indicates the envelope is nil or carries the wrong data type.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted envelope")
)

// Integrity errors are raised at decryption time and are fatal for the record.
var (
	// ErrDecryptionFailed indicates the authentication tag did not verify: the
	// ciphertext, IV or tag was modified, or the key or data type is wrong. The
	// specific cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrIntegrity, "decryption failed")

	// ErrChecksumMismatch indicates the checksum embedded in a decrypted financial
	// amount does not match its contents.
	ErrChecksumMismatch = errors.Wrap(errors.ErrIntegrity, "checksum mismatch")

	// ErrMalformedPayload indicates the decrypted plaintext is not the expected JSON.
	ErrMalformedPayload = errors.Wrap(errors.ErrIntegrity, "malformed decrypted payload")
)
