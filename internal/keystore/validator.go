package keystore

import (
	"fmt"
	"strings"
	"unicode"
)

// Password policy for key provisioning. Only the length bound blocks
// provisioning; the character-class rules are advisory and reported as
// warnings so operators can tighten them deliberately.
const (
	passwordMinLength = 5
	passwordMaxLength = 15
)

var (
	specialCharacters    = []rune{'_', '#', '%', '*', '@'}
	prohibitedCharacters = []rune{'$', '&', '=', '!'}
)

// Failure describes one violated password rule with a user-facing message.
type Failure struct {
	Rule    string
	Message string
}

// ValidationError carries the blocking rule failures for a rejected password.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	rules := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		rules[i] = f.Rule
	}
	return "password validation failed: " + strings.Join(rules, ", ")
}

// ValidatePassword checks password against the provisioning policy. It
// returns advisory warnings for weak character composition and a
// *ValidationError when a blocking rule fails.
func ValidatePassword(password string) ([]Failure, error) {
	var warnings []Failure

	if !containsAny(password, unicode.IsUpper) {
		warnings = append(warnings, Failure{
			Rule:    "uppercase",
			Message: "password contains no uppercase letter",
		})
	}
	if !containsAny(password, unicode.IsDigit) {
		warnings = append(warnings, Failure{
			Rule:    "digit",
			Message: "password contains no digit",
		})
	}
	if !containsRune(password, specialCharacters) {
		warnings = append(warnings, Failure{
			Rule:    "special",
			Message: fmt.Sprintf("password contains none of the special characters %s", runeList(specialCharacters)),
		})
	}
	if containsRune(password, prohibitedCharacters) {
		warnings = append(warnings, Failure{
			Rule:    "prohibited",
			Message: fmt.Sprintf("password contains a prohibited character (%s)", runeList(prohibitedCharacters)),
		})
	}

	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return warnings, &ValidationError{Failures: []Failure{{
			Rule:    "length",
			Message: fmt.Sprintf("password length must be between %d and %d characters", passwordMinLength, passwordMaxLength),
		}}}
	}

	return warnings, nil
}

func containsAny(s string, match func(rune) bool) bool {
	for _, r := range s {
		if match(r) {
			return true
		}
	}
	return false
}

func containsRune(s string, set []rune) bool {
	return strings.ContainsAny(s, string(set))
}

func runeList(set []rune) string {
	parts := make([]string, len(set))
	for i, r := range set {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
