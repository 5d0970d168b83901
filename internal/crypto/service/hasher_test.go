package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBKDF2Hasher(t *testing.T) {
	hasher := NewPBKDF2Hasher(NewKeyDeriver())

	t.Run("Success_HashAndVerify", func(t *testing.T) {
		stored, err := hasher.HashSensitiveData("000123456789")
		require.NoError(t, err)

		saltHex, hashHex, ok := strings.Cut(stored, ":")
		require.True(t, ok)
		assert.Len(t, saltHex, 32)
		assert.Len(t, hashHex, 64)

		assert.True(t, hasher.VerifySensitiveDataHash("000123456789", stored))
		assert.False(t, hasher.VerifySensitiveDataHash("000123456780", stored))
	})

	t.Run("Success_SaltedPerCall", func(t *testing.T) {
		h1, err := hasher.HashSensitiveData("021000021")
		require.NoError(t, err)
		h2, err := hasher.HashSensitiveData("021000021")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})

	t.Run("Error_MalformedStoredValue", func(t *testing.T) {
		for _, stored := range []string{"", "nocolon", "zz:" + strings.Repeat("0", 64), "00:abcd", ":" + strings.Repeat("0", 64)} {
			assert.False(t, hasher.VerifySensitiveDataHash("x", stored), stored)
		}
	})
}
