// Package service provides the cryptographic building blocks used by the encryptors:
// AEAD ciphers with detached tags, PBKDF2 key derivation, family key generation,
// canonical checksums, salted one-way hashing and KMS access.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)

	// NonceSize returns the nonce length the cipher expects.
	NonceSize() int
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Sealer encrypts and decrypts payloads keeping the authentication tag detached from the
// ciphertext, which is the storage layout of every envelope.
type Sealer interface {
	Seal(key []byte, alg cryptoDomain.Algorithm, plaintext, aad []byte) (*cryptoDomain.SealedPayload, error)
	Open(key []byte, alg cryptoDomain.Algorithm, payload *cryptoDomain.SealedPayload, aad []byte) ([]byte, error)
}

// KeyDeriver turns a secret and a salt into a 32-byte cipher key.
type KeyDeriver interface {
	DeriveKey(secret, salt []byte) []byte
}

// FamilyKeyGenerator produces family-scoped secrets from the master key.
type FamilyKeyGenerator interface {
	GenerateFamilyKey(familyID, userSalt string) (cryptoDomain.FamilyKey, error)
}

// SensitiveHasher computes and verifies salted one-way hashes.
type SensitiveHasher interface {
	HashSensitiveData(data string) (string, error)
	VerifySensitiveDataHash(data, stored string) bool
}

// KMSService opens keepers for the configured KMS provider.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
