package service

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes data with object keys sorted at every depth. Numbers keep their
// original textual form.
func CanonicalJSON(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksum data: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode checksum data: %w", err)
	}

	// encoding/json writes map keys in sorted order.
	return json.Marshal(generic)
}

// CreateDataChecksum returns the hex SHA-256 of the canonical JSON form of data.
func CreateDataChecksum(data any) (string, error) {
	canonical, err := CanonicalJSON(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyDataChecksum recomputes the checksum of data and compares it in constant time.
func VerifyDataChecksum(data any, expected string) bool {
	actual, err := CreateDataChecksum(data)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}
