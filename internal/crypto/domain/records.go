package domain

import "time"

// FinancialAmount is the decrypted form of a FinancialAmountEnvelope.
type FinancialAmount struct {
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
	Checksum  string    `json:"checksum"`
}

// BankAccountCredentials is the input to bank account encryption. AccountNumber and
// RoutingNumber are only ever hashed.
type BankAccountCredentials struct {
	AccountNumber string
	RoutingNumber string
	BankName      string
	AccountType   string
	Nickname      string
	Metadata      map[string]any
}

// BankAccountData is the retrievable part of a BankAccountEnvelope.
type BankAccountData struct {
	BankName    string         `json:"bank_name"`
	AccountType string         `json:"account_type"`
	Nickname    string         `json:"nickname,omitempty"`
	LastFour    string         `json:"last_four"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// EmergencyContact is part of UserPII.
type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// UserPII holds personal fields encrypted as a single bundle. All fields are optional.
type UserPII struct {
	FullName         string            `json:"full_name,omitempty"`
	DateOfBirth      string            `json:"date_of_birth,omitempty"`
	SSN              string            `json:"ssn,omitempty"`
	Address          string            `json:"address,omitempty"`
	PhoneNumber      string            `json:"phone_number,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
}

// IsEmpty reports whether no PII field is set.
func (p *UserPII) IsEmpty() bool {
	return p.FullName == "" && p.DateOfBirth == "" && p.SSN == "" && p.Address == "" &&
		p.PhoneNumber == "" && p.EmergencyContact == nil
}
