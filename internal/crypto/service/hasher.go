package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// PBKDF2Hasher produces "saltHex:hashHex" strings for equality checks on identifiers that
// must never be stored in recoverable form.
type PBKDF2Hasher struct {
	deriver KeyDeriver
}

// NewPBKDF2Hasher creates a hasher on top of deriver.
func NewPBKDF2Hasher(deriver KeyDeriver) *PBKDF2Hasher {
	return &PBKDF2Hasher{deriver: deriver}
}

// HashSensitiveData hashes data with a fresh 16-byte salt, so equal inputs yield different
// outputs on every call.
func (h *PBKDF2Hasher) HashSensitiveData(data string) (string, error) {
	salt := make([]byte, cryptoDomain.HashSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate hash salt: %w", err)
	}
	hash := h.deriver.DeriveKey([]byte(data), salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// VerifySensitiveDataHash reports whether data matches a value produced by HashSensitiveData.
// Malformed stored values never match.
func (h *PBKDF2Hasher) VerifySensitiveDataHash(data, stored string) bool {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) == 0 {
		return false
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil || len(expected) != cryptoDomain.KeySize {
		return false
	}
	actual := h.deriver.DeriveKey([]byte(data), salt)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
