package dto

import (
	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
)

// EnvelopeResponse wraps a stored envelope of any data type.
type EnvelopeResponse struct {
	Envelope any `json:"envelope"`
}

// FinancialAmountResponse is a decrypted financial amount. Timestamp is when it was
// encrypted.
type FinancialAmountResponse struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Timestamp string  `json:"timestamp"`
}

// MapFinancialAmountToResponse drops the embedded checksum, which was verified on decrypt.
func MapFinancialAmountToResponse(record *cryptoDomain.FinancialAmount) FinancialAmountResponse {
	return FinancialAmountResponse{
		Amount:    record.Amount,
		Currency:  record.Currency,
		Timestamp: record.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// BankAccountResponse is the decrypted bank account metadata.
type BankAccountResponse struct {
	Data *cryptoDomain.BankAccountData `json:"data"`
}

// PIIResponse is a decrypted PII bundle.
// SECURITY: The response carries personal data and should be transmitted over HTTPS.
type PIIResponse struct {
	PII *cryptoDomain.UserPII `json:"pii"`
}

// SensitiveDataResponse is decrypted free text.
type SensitiveDataResponse struct {
	Plaintext string `json:"plaintext"`
}

// AmountResponse is a decrypted bare amount.
type AmountResponse struct {
	Amount float64 `json:"amount"`
}

// HashResponse is a one-way hash in "saltHex:hashHex" form.
type HashResponse struct {
	Hash string `json:"hash"`
}

// MatchResponse reports a hash comparison.
type MatchResponse struct {
	Match bool `json:"match"`
}
