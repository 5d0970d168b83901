// Package dto provides data transfer objects for the encryption migration HTTP API.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/finvault/internal/validation"
)

// StartMigrationRequest names the user whose salt derives the family key.
type StartMigrationRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks if the start migration request is valid.
func (r *StartMigrationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 64),
		),
	)
}
