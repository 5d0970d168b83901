package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	apperrors "github.com/allisson/finvault/internal/errors"
)

func TestDetachedSealer_SealOpen(t *testing.T) {
	sealer := NewDetachedSealer(NewAEADManager())
	key := randomKey(t)
	aad := []byte(cryptoDomain.DataTypeUserPII)
	plaintext := []byte(`{"full_name":"Jane Doe"}`)

	for _, alg := range []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20} {
		t.Run(string(alg), func(t *testing.T) {
			payload, err := sealer.Seal(key, alg, plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, payload.Tag, cryptoDomain.TagSize)
			assert.Len(t, payload.Ciphertext, len(plaintext))

			opened, err := sealer.Open(key, alg, payload, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, opened)
		})
	}
}

func TestDetachedSealer_Open_Tampering(t *testing.T) {
	sealer := NewDetachedSealer(NewAEADManager())
	key := randomKey(t)
	aad := []byte(cryptoDomain.DataTypeFinancialAmount)

	fresh := func(t *testing.T) *cryptoDomain.SealedPayload {
		payload, err := sealer.Seal(key, cryptoDomain.AESGCM, []byte("payload"), aad)
		require.NoError(t, err)
		return payload
	}

	tests := []struct {
		name   string
		mutate func(p *cryptoDomain.SealedPayload)
		key    []byte
		aad    []byte
	}{
		{name: "flipped ciphertext byte", mutate: func(p *cryptoDomain.SealedPayload) { p.Ciphertext[0] ^= 0x01 }},
		{name: "flipped iv byte", mutate: func(p *cryptoDomain.SealedPayload) { p.IV[15] ^= 0x80 }},
		{name: "flipped tag byte", mutate: func(p *cryptoDomain.SealedPayload) { p.Tag[7] ^= 0xff }},
		{name: "truncated iv", mutate: func(p *cryptoDomain.SealedPayload) { p.IV = p.IV[:12] }},
		{name: "truncated tag", mutate: func(p *cryptoDomain.SealedPayload) { p.Tag = p.Tag[:8] }},
		{name: "wrong key", key: randomKey(t)},
		{name: "wrong domain", aad: []byte(cryptoDomain.DataTypeBankAccount)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fresh(t)
			if tt.mutate != nil {
				tt.mutate(payload)
			}
			useKey, useAAD := key, aad
			if tt.key != nil {
				useKey = tt.key
			}
			if tt.aad != nil {
				useAAD = tt.aad
			}

			plaintext, err := sealer.Open(useKey, cryptoDomain.AESGCM, payload, useAAD)
			assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
			assert.ErrorIs(t, err, apperrors.ErrIntegrity)
			assert.Nil(t, plaintext)
		})
	}

	t.Run("nil payload", func(t *testing.T) {
		_, err := sealer.Open(key, cryptoDomain.AESGCM, nil, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		payload := fresh(t)
		plaintext, err := sealer.Open(key, cryptoDomain.Algorithm("rot13"), payload, aad)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
		assert.ErrorIs(t, err, apperrors.ErrIntegrity)
		assert.False(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Nil(t, plaintext)
	})
}

func TestDetachedSealer_Seal_UnknownAlgorithm(t *testing.T) {
	sealer := NewDetachedSealer(NewAEADManager())

	_, err := sealer.Seal(randomKey(t), cryptoDomain.Algorithm("rot13"), []byte("x"), nil)
	assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
}
