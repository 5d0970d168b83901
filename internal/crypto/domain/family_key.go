package domain

// FamilyKey is the family-scoped secret passed to the key derivation function on every
// encryption and decryption call. It is derived on demand and never persisted.
type FamilyKey struct {
	secret []byte
}

// NewFamilyKey wraps secret material. The slice is copied.
func NewFamilyKey(secret []byte) FamilyKey {
	s := make([]byte, len(secret))
	copy(s, secret)
	return FamilyKey{secret: s}
}

// Bytes returns the secret material.
func (k FamilyKey) Bytes() []byte {
	return k.secret
}

// IsZero reports whether the key holds no material.
func (k FamilyKey) IsZero() bool {
	return len(k.secret) == 0
}

// String never prints the secret.
func (k FamilyKey) String() string {
	return "FamilyKey(redacted)"
}

// Zero clears the key material.
func (k FamilyKey) Zero() {
	Zero(k.secret)
}
