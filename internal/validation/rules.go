// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/finvault/internal/errors"
)

var (
	currencyRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
	digitsRegex   = regexp.MustCompile(`^[0-9]+$`)
	hexRegex      = regexp.MustCompile(`^[0-9a-fA-F]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// CurrencyCode validates a three letter ISO 4217 style code. Case is not enforced;
// callers normalise to upper case before storing.
var CurrencyCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return currencyRegex.MatchString(s)
	},
	validation.NewError("validation_currency_code", "must be a three letter currency code"),
)

// Digits validates that a string contains only ASCII digits.
var Digits = validation.NewStringRuleWithError(
	func(s string) bool {
		return digitsRegex.MatchString(s)
	},
	validation.NewError("validation_digits", "must contain only digits"),
)

// Hex validates that a string is hex encoded.
var Hex = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s)%2 == 0 && hexRegex.MatchString(s)
	},
	validation.NewError("validation_hex", "must be valid hex-encoded data"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
