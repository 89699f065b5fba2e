package service

import (
	"fmt"
	"unicode"
)

// PasswordPolicy parameterizes password-strength validation. The service
// ships two presets; production deployments should keep the strict one.
type PasswordPolicy struct {
	Name           string
	MinLength      int
	RequireClasses bool // uppercase, lowercase, digit and symbol each required
}

// bcrypt ignores input beyond 72 bytes, so longer passwords would verify
// against truncated material. Reject them up front.
const maxPasswordLength = 72

var (
	// StrictPasswordPolicy is the default: 8+ characters with at least
	// one uppercase letter, lowercase letter, digit and symbol.
	StrictPasswordPolicy = PasswordPolicy{
		Name:           "strict",
		MinLength:      8,
		RequireClasses: true,
	}

	// RelaxedPasswordPolicy is a named alternate configuration (6+
	// characters, no class requirements) kept for test environments. It
	// is never the silent default.
	RelaxedPasswordPolicy = PasswordPolicy{
		Name:      "relaxed",
		MinLength: 6,
	}
)

// PasswordPolicyByName resolves a preset name, defaulting to strict.
func PasswordPolicyByName(name string) PasswordPolicy {
	if name == RelaxedPasswordPolicy.Name {
		return RelaxedPasswordPolicy
	}
	return StrictPasswordPolicy
}

// Check returns the field errors for a candidate password, empty when it
// satisfies the policy.
func (p PasswordPolicy) Check(password string) []FieldError {
	var fields []FieldError

	if len(password) > maxPasswordLength {
		return []FieldError{{
			Field: "password",
			Msg:   fmt.Sprintf("password must be at most %d characters", maxPasswordLength),
		}}
	}

	if p.RequireClasses {
		if len(password) < p.MinLength || !hasAllClasses(password) {
			fields = append(fields, FieldError{
				Field: "password",
				Msg: fmt.Sprintf(
					"password must be at least %d characters long and contain uppercase, lowercase, number, and symbol",
					p.MinLength,
				),
			})
		}
		return fields
	}

	if len(password) < p.MinLength {
		fields = append(fields, FieldError{
			Field: "password",
			Msg:   fmt.Sprintf("password must be at least %d characters", p.MinLength),
		})
	}
	return fields
}

func hasAllClasses(password string) bool {
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// ConflictPolicy controls which fields participate in the duplicate
// pre-check before registration. The schema's unique constraints remain
// authoritative regardless of this policy.
type ConflictPolicy struct {
	// Email includes the normalized email in the duplicate check.
	Email bool
	// Username includes the username in the duplicate check.
	Username bool
	// FoldUsername makes the username comparison case-insensitive.
	FoldUsername bool
}

// DefaultConflictPolicy flags a duplicate on either field, with
// case-sensitive usernames.
var DefaultConflictPolicy = ConflictPolicy{Email: true, Username: true}
