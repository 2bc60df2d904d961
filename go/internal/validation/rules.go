// Package validation holds the pure league-configuration rules. Nothing here
// touches storage.
package validation

import (
	"unicode"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
)

// Team slot capacities a league may be configured with.
var allowedTeamSlots = map[int]struct{}{
	4: {}, 6: {}, 8: {}, 10: {}, 12: {}, 14: {}, 16: {}, 18: {}, 20: {},
}

// ValidateTeamSlots checks the team-slot capacity against the allowed set.
func ValidateTeamSlots(n int) error {
	if _, ok := allowedTeamSlots[n]; !ok {
		return apperrors.Newf(apperrors.KindValidation,
			"invalid team slot count %d: must be one of 4, 6, 8, 10, 12, 14, 16, 18, 20", n)
	}
	return nil
}

// ValidatePlayoffTeams checks the playoff bracket size.
func ValidatePlayoffTeams(n int) error {
	if n != 4 && n != 6 {
		return apperrors.Newf(apperrors.KindValidation,
			"invalid playoff team count %d: must be 4 or 6", n)
	}
	return nil
}

// Password rule violation messages, reported all at once so a caller can
// surface every problem in a single round trip.
const (
	PasswordViolationLength    = "password must be between 8 and 12 characters"
	PasswordViolationUppercase = "password must contain at least one uppercase letter"
	PasswordViolationLowercase = "password must contain at least one lowercase letter"
	PasswordViolationDigit     = "password must contain at least one digit"
	PasswordViolationCharset   = "password may only contain letters and digits"
)

// ValidatePasswordComplexity returns every rule the candidate password
// violates. An empty slice means the password is acceptable.
func ValidatePasswordComplexity(pw string) []string {
	var violations []string

	runes := []rune(pw)
	if len(runes) < 8 || len(runes) > 12 {
		violations = append(violations, PasswordViolationLength)
	}

	var hasUpper, hasLower, hasDigit, hasOther bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasOther = true
		}
	}

	if !hasUpper {
		violations = append(violations, PasswordViolationUppercase)
	}
	if !hasLower {
		violations = append(violations, PasswordViolationLowercase)
	}
	if !hasDigit {
		violations = append(violations, PasswordViolationDigit)
	}
	if hasOther {
		violations = append(violations, PasswordViolationCharset)
	}

	return violations
}
