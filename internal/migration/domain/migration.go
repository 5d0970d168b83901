// Package domain defines the encryption migration run: its per-entity result, progress
// snapshots, the rows it reads and the per-family summary.
package domain

import (
	"encoding/json"
	"time"

	cryptoDomain "github.com/allisson/finvault/internal/crypto/domain"
	"github.com/allisson/finvault/internal/errors"
)

// Entity names a migrated table.
type Entity string

const (
	EntityAccounts     Entity = "accounts"
	EntityTransactions Entity = "transactions"
	EntityProfiles     Entity = "profiles"
)

// Stage returns the progress label for the entity.
func (e Entity) Stage() string {
	switch e {
	case EntityAccounts:
		return "Encrypting account balances"
	case EntityTransactions:
		return "Encrypting transaction amounts"
	case EntityProfiles:
		return "Encrypting user PII"
	}
	return string(e)
}

// Table returns the table the entity is stored in.
func (e Entity) Table() string {
	if e == EntityAccounts {
		return "financial_accounts"
	}
	return string(e)
}

// OperationType is the encryption_operations_log operation recorded per row.
func (e Entity) OperationType() string {
	if e == EntityProfiles {
		return "encrypt_" + string(cryptoDomain.DataTypeUserPII)
	}
	return "encrypt_" + string(cryptoDomain.DataTypeFinancialAmount)
}

// State is the lifecycle of one entity migration.
type State string

const (
	StateNotStarted      State = "not_started"
	StateRunning         State = "running"
	StateCompleted       State = "completed"
	StatePartiallyFailed State = "partially_failed"
)

// MigrationResult accumulates the outcome of one entity migration. Errors holds one
// message per failed row plus any run-level error that ended the run early.
type MigrationResult struct {
	Entity     Entity    `json:"entity"`
	State      State     `json:"state"`
	Success    bool      `json:"success"`
	Processed  int       `json:"processed"`
	Encrypted  int       `json:"encrypted"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
	runErr     bool
}

// NewMigrationResult returns a result in the NotStarted state.
func NewMigrationResult(entity Entity, start time.Time) *MigrationResult {
	return &MigrationResult{
		Entity:    entity,
		State:     StateNotStarted,
		Errors:    []string{},
		StartTime: start,
	}
}

// Start moves the result to Running.
func (r *MigrationResult) Start() {
	r.State = StateRunning
}

// RecordSuccess counts one encrypted row.
func (r *MigrationResult) RecordSuccess() {
	r.Encrypted++
}

// RecordFailure counts one failed row.
func (r *MigrationResult) RecordFailure(message string) {
	r.Failed++
	r.Errors = append(r.Errors, message)
}

// Abort records an error that ended the run before all rows were processed.
func (r *MigrationResult) Abort(message string) {
	r.runErr = true
	r.Errors = append(r.Errors, message)
}

// Aborted reports whether a run-level error was recorded.
func (r *MigrationResult) Aborted() bool {
	return r.runErr
}

// Finish stamps the end time and resolves the final state. A run succeeds only when no
// row failed and no run-level error occurred.
func (r *MigrationResult) Finish(end time.Time) {
	r.EndTime = end
	r.DurationMs = end.Sub(r.StartTime).Milliseconds()
	r.Success = r.Failed == 0 && !r.runErr
	if r.Success {
		r.State = StateCompleted
	} else {
		r.State = StatePartiallyFailed
	}
}

// MigrationProgress is emitted after each row is picked up. It is never persisted.
type MigrationProgress struct {
	Entity      Entity  `json:"entity"`
	Stage       string  `json:"stage"`
	Current     int     `json:"current"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
	CurrentItem string  `json:"current_item,omitempty"`
}

// NewMigrationProgress builds a snapshot with the percentage rounded to one decimal.
func NewMigrationProgress(entity Entity, current, total int, item string) MigrationProgress {
	var pct float64
	if total > 0 {
		pct = float64(int(float64(current)*1000/float64(total)+0.5)) / 10
	}
	return MigrationProgress{
		Entity:      entity,
		Stage:       entity.Stage(),
		Current:     current,
		Total:       total,
		Percentage:  pct,
		CurrentItem: item,
	}
}

// FamilySummary combines the three entity results of a family migration.
type FamilySummary struct {
	FamilyID       string           `json:"family_id"`
	UserID         string           `json:"user_id"`
	Success        bool             `json:"success"`
	Accounts       *MigrationResult `json:"accounts"`
	Transactions   *MigrationResult `json:"transactions"`
	Profiles       *MigrationResult `json:"profiles"`
	TotalProcessed int              `json:"total_processed"`
	TotalEncrypted int              `json:"total_encrypted"`
	TotalFailed    int              `json:"total_failed"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        time.Time        `json:"end_time"`
	DurationMs     int64            `json:"duration_ms"`
}

// Results returns the entity results in execution order, skipping those not run.
func (s *FamilySummary) Results() []*MigrationResult {
	results := make([]*MigrationResult, 0, 3)
	for _, r := range []*MigrationResult{s.Accounts, s.Transactions, s.Profiles} {
		if r != nil {
			results = append(results, r)
		}
	}
	return results
}

// Finish rolls up the entity totals.
func (s *FamilySummary) Finish(end time.Time) {
	s.Success = true
	s.TotalProcessed, s.TotalEncrypted, s.TotalFailed = 0, 0, 0
	for _, r := range s.Results() {
		s.TotalProcessed += r.Processed
		s.TotalEncrypted += r.Encrypted
		s.TotalFailed += r.Failed
		s.Success = s.Success && r.Success
	}
	s.EndTime = end
	s.DurationMs = end.Sub(s.StartTime).Milliseconds()
}

// AccountRow is a financial account whose balance is not encrypted yet.
type AccountRow struct {
	ID       string
	FamilyID string
	Name     string
	Balance  float64
	Currency string
}

// TransactionRow is a transaction whose amount is not encrypted yet.
type TransactionRow struct {
	ID          string
	FamilyID    string
	Description string
	Amount      float64
	Currency    string
}

// ProfileRow is a profile whose PII is not encrypted yet. EmergencyContact is the raw
// JSON column and is decoded per row by UserPII.
type ProfileRow struct {
	UserID           string
	FamilyID         string
	FullName         string
	DateOfBirth      string
	SSN              string
	Address          string
	PhoneNumber      string
	EmergencyContact []byte
}

// UserPII assembles the PII bundle to encrypt.
func (p *ProfileRow) UserPII() (*cryptoDomain.UserPII, error) {
	pii := &cryptoDomain.UserPII{
		FullName:    p.FullName,
		DateOfBirth: p.DateOfBirth,
		SSN:         p.SSN,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
	}
	if len(p.EmergencyContact) > 0 && string(p.EmergencyContact) != "null" {
		var contact cryptoDomain.EmergencyContact
		if err := json.Unmarshal(p.EmergencyContact, &contact); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "invalid emergency contact: %v", err)
		}
		pii.EmergencyContact = &contact
	}
	return pii, nil
}
