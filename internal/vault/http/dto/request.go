// Package dto provides data transfer objects for the family vault HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	customValidation "github.com/allisson/finvault/internal/validation"
)

var userIDRules = []validation.Rule{
	validation.Required,
	customValidation.NotBlank,
	customValidation.NoWhitespace,
	validation.Length(1, 64),
}

// EncryptFinancialAmountRequest contains an amount to encrypt for the family.
type EncryptFinancialAmountRequest struct {
	UserID   string   `json:"user_id"`
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

// Validate checks if the request is valid. Range and precision are enforced by the
// encryptor.
func (r *EncryptFinancialAmountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Amount, validation.NotNil),
		validation.Field(&r.Currency, validation.Required, customValidation.CurrencyCode),
	)
}

// DecryptFinancialAmountRequest carries a stored amount envelope.
type DecryptFinancialAmountRequest struct {
	UserID   string                                `json:"user_id"`
	Envelope *cryptoDomain.FinancialAmountEnvelope `json:"envelope"`
}

// Validate checks if the request is valid.
func (r *DecryptFinancialAmountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Envelope, validation.NotNil),
	)
}

// EncryptBankAccountRequest contains the credentials to hash and encrypt.
// SECURITY: AccountNumber and RoutingNumber are never echoed back.
type EncryptBankAccountRequest struct {
	UserID        string         `json:"user_id"`
	AccountNumber string         `json:"account_number"`
	RoutingNumber string         `json:"routing_number"`
	BankName      string         `json:"bank_name"`
	AccountType   string         `json:"account_type"`
	Nickname      string         `json:"nickname"`
	Metadata      map[string]any `json:"metadata"`
}

// Validate checks if the request is valid.
func (r *EncryptBankAccountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.AccountNumber, validation.Required, customValidation.Digits),
		validation.Field(&r.RoutingNumber, validation.Required, customValidation.Digits),
		validation.Field(&r.BankName, validation.Required, customValidation.NotBlank),
		validation.Field(&r.AccountType, validation.Required, customValidation.NotBlank),
	)
}

// Credentials maps the request to the encryptor input.
func (r *EncryptBankAccountRequest) Credentials() *cryptoDomain.BankAccountCredentials {
	return &cryptoDomain.BankAccountCredentials{
		AccountNumber: r.AccountNumber,
		RoutingNumber: r.RoutingNumber,
		BankName:      r.BankName,
		AccountType:   r.AccountType,
		Nickname:      r.Nickname,
		Metadata:      r.Metadata,
	}
}

// DecryptBankAccountRequest carries a stored bank account envelope.
type DecryptBankAccountRequest struct {
	UserID   string                            `json:"user_id"`
	Envelope *cryptoDomain.BankAccountEnvelope `json:"envelope"`
}

// Validate checks if the request is valid.
func (r *DecryptBankAccountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Envelope, validation.NotNil),
	)
}

// VerifyBankAccountRequest checks account numbers against a stored envelope's hashes.
type VerifyBankAccountRequest struct {
	UserID        string                            `json:"user_id"`
	AccountNumber string                            `json:"account_number"`
	RoutingNumber string                            `json:"routing_number"`
	Envelope      *cryptoDomain.BankAccountEnvelope `json:"envelope"`
}

// Validate checks if the request is valid. RoutingNumber is optional.
func (r *VerifyBankAccountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.AccountNumber, validation.Required, customValidation.Digits),
		validation.Field(&r.RoutingNumber, customValidation.Digits),
		validation.Field(&r.Envelope, validation.NotNil),
	)
}

// EncryptUserPIIRequest contains the PII bundle to encrypt.
type EncryptUserPIIRequest struct {
	UserID string                `json:"user_id"`
	PII    *cryptoDomain.UserPII `json:"pii"`
}

// Validate checks if the request is valid. An empty bundle is rejected.
func (r *EncryptUserPIIRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.PII, validation.NotNil, validation.By(func(any) error {
			if r.PII != nil && r.PII.IsEmpty() {
				return validation.NewError("validation_pii_empty", "must set at least one field")
			}
			return nil
		})),
	)
}

// DecryptUserPIIRequest carries a stored PII envelope.
type DecryptUserPIIRequest struct {
	UserID   string                        `json:"user_id"`
	Envelope *cryptoDomain.UserPIIEnvelope `json:"envelope"`
}

// Validate checks if the request is valid.
func (r *DecryptUserPIIRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Envelope, validation.NotNil),
	)
}

// EncryptSensitiveDataRequest contains free text to encrypt under the master key.
type EncryptSensitiveDataRequest struct {
	UserID    string `json:"user_id"`
	Plaintext string `json:"plaintext"`
}

// Validate checks if the request is valid.
func (r *EncryptSensitiveDataRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Plaintext, validation.Required),
	)
}

// EncryptAmountRequest contains a bare amount to encrypt under the master key.
type EncryptAmountRequest struct {
	UserID string   `json:"user_id"`
	Amount *float64 `json:"amount"`
}

// Validate checks if the request is valid.
func (r *EncryptAmountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Amount, validation.NotNil),
	)
}

// DecryptBlobRequest carries a master-key envelope for the sensitive-data and amount
// decrypt endpoints.
type DecryptBlobRequest struct {
	UserID   string                      `json:"user_id"`
	Envelope *cryptoDomain.EncryptedBlob `json:"envelope"`
}

// Validate checks if the request is valid.
func (r *DecryptBlobRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, userIDRules...),
		validation.Field(&r.Envelope, validation.NotNil),
	)
}

// HashRequest contains a value to hash one way.
type HashRequest struct {
	Data string `json:"data"`
}

// Validate checks if the request is valid.
func (r *HashRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.Required),
	)
}

// VerifyHashRequest compares a value with a stored "saltHex:hashHex" hash.
type VerifyHashRequest struct {
	Data string `json:"data"`
	Hash string `json:"hash"`
}

// Validate checks if the request is valid.
func (r *VerifyHashRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.Required),
		validation.Field(&r.Hash, validation.Required, customValidation.NotBlank),
	)
}
