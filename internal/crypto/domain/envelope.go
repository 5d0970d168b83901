package domain

import "time"

// SealedPayload is the raw output of the authenticated encryption primitive with the
// tag detached from the ciphertext.
type SealedPayload struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}

// EncryptedBlob is the storage form of one encryption call. Binary fields are hex
// encoded. Salt is the per-call KDF salt and is empty in global-key mode.
type EncryptedBlob struct {
	Ciphertext  string    `json:"encrypted"`
	Salt        string    `json:"salt"`
	IV          string    `json:"iv"`
	Tag         string    `json:"tag"`
	Algorithm   Algorithm `json:"algorithm,omitempty"`
	EncryptedAt time.Time `json:"encrypted_at"`
	DataType    DataType  `json:"data_type"`
}

// AlgorithmOrDefault returns the envelope algorithm, treating an empty value as AES-GCM.
func (b *EncryptedBlob) AlgorithmOrDefault() Algorithm {
	if b.Algorithm == "" {
		return AESGCM
	}
	return b.Algorithm
}

// FinancialAmountEnvelope is an encrypted amount. Currency stays in clear for querying.
type FinancialAmountEnvelope struct {
	EncryptedBlob
	Currency string `json:"currency"`
}

// BankAccountEnvelope is encrypted bank account metadata plus the irreversible hashes of
// the full account and routing numbers. LastFour, BankName and AccountType are mirrored
// in clear so lists can be filtered and displayed without decryption.
type BankAccountEnvelope struct {
	EncryptedBlob
	AccountNumberHash string `json:"account_number_hash"`
	RoutingNumberHash string `json:"routing_number_hash"`
	LastFour          string `json:"last_four"`
	BankName          string `json:"bank_name"`
	AccountType       string `json:"account_type"`
}

// UserPIIEnvelope is the opaque encrypted PII bundle. Nothing is kept in clear.
type UserPIIEnvelope struct {
	EncryptedBlob
}
