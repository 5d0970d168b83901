package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// PBKDF2KeyDeriver derives 32-byte keys with PBKDF2-HMAC-SHA256.
type PBKDF2KeyDeriver struct {
	iterations int
}

// NewKeyDeriver returns a deriver using the fixed production iteration count.
func NewKeyDeriver() *PBKDF2KeyDeriver {
	return &PBKDF2KeyDeriver{iterations: cryptoDomain.PBKDF2Iterations}
}

// DeriveKey is deterministic: the same secret and salt always produce the same key.
func (d *PBKDF2KeyDeriver) DeriveKey(secret, salt []byte) []byte {
	return pbkdf2.Key(secret, salt, d.iterations, cryptoDomain.KeySize, sha256.New)
}
