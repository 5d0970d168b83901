// Package domain defines the types shared by the encryption layer: algorithms,
// data-type tags, encrypted envelopes, decrypted record shapes and key material.
package domain

// Algorithm represents the AEAD algorithm used for an envelope.
//
// Both supported algorithms use 256-bit keys and 128-bit authentication tags.
type Algorithm string

const (
	// AESGCM is AES-256-GCM with a 16-byte IV. It is the default and the algorithm
	// assumed for envelopes that carry no algorithm field.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305 with the standard 12-byte nonce.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// DataType tags an envelope with the domain it belongs to. The tag is bound to the
// ciphertext as associated data, so an envelope produced for one domain cannot be
// opened as another.
type DataType string

const (
	DataTypeFinancialAmount DataType = "financial_amount"
	DataTypeBankAccount     DataType = "bank_account"
	DataTypeUserPII         DataType = "user_pii"
	DataTypeSensitiveData   DataType = "sensitive_data"
	DataTypeAmount          DataType = "amount"
)

const (
	// KeySize is the size in bytes of every cipher key and of the master key.
	KeySize = 32

	// KDFSaltSize is the size of the random salt generated per encryption call.
	KDFSaltSize = 32

	// HashSaltSize is the size of the random salt generated per one-way hash.
	HashSaltSize = 16

	// PBKDF2Iterations is the fixed iteration count for key derivation and hashing.
	PBKDF2Iterations = 100000

	// GCMIVSize is the IV size used with AES-256-GCM.
	GCMIVSize = 16

	// TagSize is the authentication tag size of both algorithms.
	TagSize = 16

	// MaxFinancialAmount is the largest amount accepted by the financial encryptor.
	MaxFinancialAmount = 999999999.99

	// EncryptionVersion is written next to every migrated envelope.
	EncryptionVersion = 1
)
