// Package service provides the HMAC signer that makes audit entries tamper evident.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/finvault/internal/audit/domain"
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	cryptoService "github.com/allisson/finvault/internal/crypto/service"
)

// AuditSigner signs and verifies audit entries.
type AuditSigner interface {
	Sign(rootKey []byte, entry *auditDomain.AuditLogEntry) ([]byte, error)
	Verify(rootKey []byte, entry *auditDomain.AuditLogEntry) error
}

type auditSigner struct{}

// NewAuditSigner creates a signer using HKDF-SHA256 to derive the signing key from the
// master key and HMAC-SHA256 over a length-prefixed canonical encoding of the entry.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey separates the signing key from the encryption uses of the master key.
func (a *auditSigner) deriveSigningKey(rootKey []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, rootKey, nil, []byte("finvault-audit-log-signing-v1"))

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(reader, signingKey); err != nil {
		return nil, err
	}
	return signingKey, nil
}

// canonicalize encodes every stored field except the signature. JSON fields use the
// canonical form so key order in the database does not matter.
// Format: id || len-prefixed strings and JSON || created_at (unix micro)
func (a *auditSigner) canonicalize(entry *auditDomain.AuditLogEntry) ([]byte, error) {
	buf := make([]byte, 0, 512)
	buf = append(buf, entry.ID[:]...)

	buf = appendLengthPrefixed(buf, []byte(entry.FamilyID))
	buf = appendLengthPrefixed(buf, []byte(entry.UserID))
	buf = appendLengthPrefixed(buf, []byte(entry.Action))
	buf = appendLengthPrefixed(buf, []byte(entry.TableName))
	buf = appendOptional(buf, entry.RecordID)

	for _, data := range []map[string]any{entry.OldData, entry.NewData, entry.OperationContext} {
		if data == nil {
			buf = appendLengthPrefixed(buf, nil)
			continue
		}
		canonical, err := cryptoService.CanonicalJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to canonicalize entry data: %w", err)
		}
		buf = appendLengthPrefixed(buf, canonical)
	}

	buf = appendOptional(buf, entry.IPAddress)
	buf = appendOptional(buf, entry.UserAgent)
	if entry.Amount != nil {
		buf = appendLengthPrefixed(buf, []byte(strconv.FormatFloat(*entry.Amount, 'f', 2, 64)))
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}
	buf = appendLengthPrefixed(buf, []byte(entry.RiskLevel))

	// Stored timestamps have microsecond precision.
	buf = binary.BigEndian.AppendUint64(buf, uint64(entry.CreatedAt.UnixMicro()))
	return buf, nil
}

func appendOptional(buf []byte, s *string) []byte {
	if s == nil {
		return appendLengthPrefixed(buf, nil)
	}
	return appendLengthPrefixed(buf, []byte(*s))
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign returns the 32-byte HMAC-SHA256 signature of entry.
func (a *auditSigner) Sign(rootKey []byte, entry *auditDomain.AuditLogEntry) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(rootKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	defer cryptoDomain.Zero(signingKey)

	canonical, err := a.canonicalize(entry)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify returns ErrSignatureInvalid if entry was modified after signing.
func (a *auditSigner) Verify(rootKey []byte, entry *auditDomain.AuditLogEntry) error {
	expected, err := a.Sign(rootKey, entry)
	if err != nil {
		return fmt.Errorf("failed to compute expected signature: %w", err)
	}
	if !hmac.Equal(entry.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
