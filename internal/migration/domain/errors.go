package domain

import (
	"github.com/allisson/finvault/internal/errors"
)

var (
	// ErrMissingUserSalt indicates the user's profile has no encryption salt, so no family
	// key can be derived. Nothing is migrated.
	ErrMissingUserSalt = errors.Wrap(errors.ErrConfiguration, "user encryption salt not found")

	// ErrRowNotPending indicates the row was deleted or gained an envelope between read
	// and write.
	ErrRowNotPending = errors.Wrap(errors.ErrConflict, "row is missing or already encrypted")

	// ErrMigrationCancelled is recorded when the context ends mid-run.
	ErrMigrationCancelled = errors.New("migration cancelled")
)
