package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// DetachedSealer splits the authentication tag off the AEAD output on seal and joins it
// back on open.
type DetachedSealer struct {
	aeadManager AEADManager
}

// NewDetachedSealer creates a DetachedSealer backed by aeadManager.
func NewDetachedSealer(aeadManager AEADManager) *DetachedSealer {
	return &DetachedSealer{aeadManager: aeadManager}
}

// Seal encrypts plaintext under key and returns ciphertext, IV and tag as separate slices.
func (s *DetachedSealer) Seal(
	key []byte,
	alg cryptoDomain.Algorithm,
	plaintext, aad []byte,
) (*cryptoDomain.SealedPayload, error) {
	aead, err := s.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	sealed, nonce, err := aead.Encrypt(plaintext, aad)
	if err != nil {
		return nil, err
	}
	if len(sealed) < cryptoDomain.TagSize {
		return nil, fmt.Errorf("sealed output shorter than tag: %d bytes", len(sealed))
	}

	split := len(sealed) - cryptoDomain.TagSize
	return &cryptoDomain.SealedPayload{
		Ciphertext: sealed[:split],
		IV:         nonce,
		Tag:        sealed[split:],
	}, nil
}

// Open verifies and decrypts payload. Every failure, including an unknown algorithm
// recorded on the envelope or an IV or tag of the wrong length, is reported as
// ErrDecryptionFailed.
func (s *DetachedSealer) Open(
	key []byte,
	alg cryptoDomain.Algorithm,
	payload *cryptoDomain.SealedPayload,
	aad []byte,
) ([]byte, error) {
	aead, err := s.aeadManager.CreateCipher(key, alg)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	if payload == nil || len(payload.IV) != aead.NonceSize() || len(payload.Tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	joined := make([]byte, 0, len(payload.Ciphertext)+len(payload.Tag))
	joined = append(joined, payload.Ciphertext...)
	joined = append(joined, payload.Tag...)

	plaintext, err := aead.Decrypt(joined, payload.IV, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
