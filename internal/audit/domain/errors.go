package domain

import (
	"github.com/allisson/finvault/internal/errors"
)

var (
	// ErrInvalidEntry indicates an audit entry is missing required fields.
	ErrInvalidEntry = errors.Wrap(errors.ErrInvalidInput, "invalid audit log entry")

	// ErrSignatureInvalid indicates a stored entry does not match its signature.
	ErrSignatureInvalid = errors.Wrap(errors.ErrIntegrity, "audit log signature is invalid")

	// ErrDashboardNotFound is returned by repositories when the view has no row.
	ErrDashboardNotFound = errors.Wrap(errors.ErrNotFound, "security dashboard not found")
)
