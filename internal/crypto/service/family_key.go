package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// FamilyKeyService generates family secrets from the process master key.
type FamilyKeyService struct {
	masterKey *cryptoDomain.MasterKey
}

// NewFamilyKeyService creates a FamilyKeyService. A nil master key is accepted so the
// configuration error surfaces on first use rather than at wiring time.
func NewFamilyKeyService(masterKey *cryptoDomain.MasterKey) *FamilyKeyService {
	return &FamilyKeyService{masterKey: masterKey}
}

// GenerateFamilyKey returns hex(SHA-256(masterKeyHex ":" familyID ":" userSalt)).
//
// The result is deterministic so decryption can re-derive it without storage. It is the
// secret fed to the KDF on each encryption call, never a cipher key itself.
func (s *FamilyKeyService) GenerateFamilyKey(familyID, userSalt string) (cryptoDomain.FamilyKey, error) {
	if s.masterKey == nil {
		return cryptoDomain.FamilyKey{}, cryptoDomain.ErrMasterKeyNotSet
	}
	if familyID == "" || userSalt == "" {
		return cryptoDomain.FamilyKey{}, cryptoDomain.ErrInvalidFamilyKeyInput
	}

	var familyKey cryptoDomain.FamilyKey
	err := s.masterKey.Use(func(key []byte) error {
		sum := sha256.Sum256([]byte(hex.EncodeToString(key) + ":" + familyID + ":" + userSalt))
		familyKey = cryptoDomain.NewFamilyKey([]byte(hex.EncodeToString(sum[:])))
		return nil
	})
	return familyKey, err
}

// GenerateEncryptionKey returns 32 random bytes hex encoded, the ENCRYPTION_MASTER_KEY format.
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	defer cryptoDomain.Zero(key)
	return hex.EncodeToString(key), nil
}
