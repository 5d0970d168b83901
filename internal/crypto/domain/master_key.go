package domain

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync"
)

// KMSKeeper wraps and unwraps key material with an external key management service.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// MasterKey is the process-wide root secret. It is mixed into every family key and
// used directly as the cipher key in global-key mode.
type MasterKey struct {
	mu  sync.RWMutex
	key []byte
}

// NewMasterKey returns a MasterKey holding a copy of key, which must be 32 bytes.
func NewMasterKey(key []byte) (*MasterKey, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &MasterKey{key: k}, nil
}

// ParseMasterKeyHex parses the ENCRYPTION_MASTER_KEY format: exactly 64 hex characters.
func ParseMasterKeyHex(raw string) (*MasterKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMasterKeyNotSet
	}
	if len(raw) != KeySize*2 {
		return nil, ErrInvalidMasterKey
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidMasterKey
	}
	defer Zero(key)
	return NewMasterKey(key)
}

// LoadMasterKey parses raw as a hex master key, or, when keeper is not nil, as a
// base64 ciphertext that the keeper unwraps to the 32 raw key bytes.
func LoadMasterKey(ctx context.Context, raw string, keeper KMSKeeper) (*MasterKey, error) {
	if keeper == nil {
		return ParseMasterKeyHex(raw)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMasterKeyNotSet
	}
	ciphertext, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrInvalidMasterKey
	}
	key, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, ErrKMSUnwrapFailed
	}
	defer Zero(key)
	return NewMasterKey(key)
}

// Use calls fn with the raw key material under a read lock, so Close waits for fn to
// return. fn must not retain key. Returns ErrMasterKeyClosed once Close has run.
func (m *MasterKey) Use(fn func(key []byte) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.key) != KeySize {
		return ErrMasterKeyClosed
	}
	return fn(m.key)
}

// Bytes returns a copy of the key material, or nil after Close.
func (m *MasterKey) Bytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.key == nil {
		return nil
	}
	k := make([]byte, len(m.key))
	copy(k, m.key)
	return k
}

// Hex returns the lowercase hex encoding of the key, or "" after Close.
func (m *MasterKey) Hex() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return hex.EncodeToString(m.key)
}

// String never prints the key.
func (m *MasterKey) String() string {
	return "MasterKey(redacted)"
}

// Close zeroes the key material. It blocks until in-flight Use calls return.
func (m *MasterKey) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	Zero(m.key)
	m.key = nil
}
