package dto

import (
	"time"

	migrationDomain "github.com/allisson/finvault/internal/migration/domain"
)

// MigrationResultResponse is one entity's migration outcome.
type MigrationResultResponse struct {
	Entity     string    `json:"entity"`
	State      string    `json:"state"`
	Success    bool      `json:"success"`
	Processed  int       `json:"processed"`
	Encrypted  int       `json:"encrypted"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
}

// FamilyMigrationResponse is the summary of a family migration.
type FamilyMigrationResponse struct {
	FamilyID       string                  `json:"family_id"`
	UserID         string                  `json:"user_id"`
	Success        bool                    `json:"success"`
	Accounts       MigrationResultResponse `json:"accounts"`
	Transactions   MigrationResultResponse `json:"transactions"`
	Profiles       MigrationResultResponse `json:"profiles"`
	TotalProcessed int                     `json:"total_processed"`
	TotalEncrypted int                     `json:"total_encrypted"`
	TotalFailed    int                     `json:"total_failed"`
	DurationMs     int64                   `json:"duration_ms"`
}

// MapMigrationResultToResponse converts a domain result to an API response.
func MapMigrationResultToResponse(result *migrationDomain.MigrationResult) MigrationResultResponse {
	if result == nil {
		return MigrationResultResponse{State: string(migrationDomain.StateNotStarted), Errors: []string{}}
	}
	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	return MigrationResultResponse{
		Entity:     string(result.Entity),
		State:      string(result.State),
		Success:    result.Success,
		Processed:  result.Processed,
		Encrypted:  result.Encrypted,
		Failed:     result.Failed,
		Errors:     errs,
		StartTime:  result.StartTime,
		EndTime:    result.EndTime,
		DurationMs: result.DurationMs,
	}
}

// MapFamilySummaryToResponse converts a family summary to an API response.
func MapFamilySummaryToResponse(summary *migrationDomain.FamilySummary) FamilyMigrationResponse {
	return FamilyMigrationResponse{
		FamilyID:       summary.FamilyID,
		UserID:         summary.UserID,
		Success:        summary.Success,
		Accounts:       MapMigrationResultToResponse(summary.Accounts),
		Transactions:   MapMigrationResultToResponse(summary.Transactions),
		Profiles:       MapMigrationResultToResponse(summary.Profiles),
		TotalProcessed: summary.TotalProcessed,
		TotalEncrypted: summary.TotalEncrypted,
		TotalFailed:    summary.TotalFailed,
		DurationMs:     summary.DurationMs,
	}
}
