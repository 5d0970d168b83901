package domain

import (
	"time"

	validation "github.com/jellydator/validation"
)

const (
	// DefaultPageLimit is used when a filter has no limit.
	DefaultPageLimit = 50
	// MaxPageLimit caps the page size.
	MaxPageLimit = 100
)

// AuditLogFilter narrows GetAuditLogs. Zero fields do not filter. Date bounds are inclusive.
type AuditLogFilter struct {
	Action        Action
	TableName     string
	RiskLevel     RiskLevel
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
	Offset        int
	Limit         int
}

// Normalize applies the default and maximum page size.
func (f AuditLogFilter) Normalize() AuditLogFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

// Validate checks enum values, offset and the date range.
func (f AuditLogFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Action, validation.By(func(any) error {
			if f.Action != "" && !f.Action.Valid() {
				return validation.NewError("validation_action", "must be a known action")
			}
			return nil
		})),
		validation.Field(&f.RiskLevel, validation.By(func(any) error {
			if f.RiskLevel != "" && !f.RiskLevel.Valid() {
				return validation.NewError("validation_risk_level", "must be a known risk level")
			}
			return nil
		})),
		validation.Field(&f.Offset, validation.Min(0)),
		validation.Field(&f.CreatedAtTo, validation.By(func(any) error {
			if f.CreatedAtFrom != nil && f.CreatedAtTo != nil && f.CreatedAtFrom.After(*f.CreatedAtTo) {
				return validation.NewError("validation_date_range", "must not be before created_at_from")
			}
			return nil
		})),
	)
}
