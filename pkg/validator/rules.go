package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	digitRegex     = regexp.MustCompile(`[0-9]`)
	specialRegex   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// commonPasswords is a short denylist of the most frequently
// compromised passwords. Not exhaustive (policy rules do the heavy
// lifting) but it catches the worst offenders cheaply.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "123456": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "qwerty": {},
	"qwerty123": {}, "abc123": {}, "letmein": {}, "welcome": {},
	"admin": {}, "admin123": {}, "iloveyou": {}, "monkey": {},
	"dragon": {}, "sunshine": {}, "trustno1": {}, "111111": {},
	"000000": {}, "master": {}, "secret": {}, "login": {},
}

// PasswordPolicy describes the accepted password shape.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of uppercase, lowercase, digit, special
}

// DefaultPasswordPolicy is 8-128 characters drawing on at least two
// character classes: strict enough to block trivial passwords without
// forcing unusable composition rules.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, MaxLength: 128, MinCharClasses: 2}
}

// ValidEmail accepts RFC 5322 addresses with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			_, domain, _ := strings.Cut(value, "@")
			return strings.Contains(domain, ".")
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// StrongPassword enforces the given policy.
func StrongPassword(field, value string, policy PasswordPolicy) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < policy.MinLength || len(value) > policy.MaxLength {
				return false
			}

			classes := 0
			for _, re := range []*regexp.Regexp{uppercaseRegex, lowercaseRegex, digitRegex, specialRegex} {
				if re.MatchString(value) {
					classes++
				}
			}
			return classes >= policy.MinCharClasses
		},
		Error: ValidationError{
			Field: field,
			Message: fmt.Sprintf("password must be %d-%d characters with at least %d character classes",
				policy.MinLength, policy.MaxLength, policy.MinCharClasses),
		},
	}
}

// NotCommonPassword rejects entries from the common-password denylist.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, found := commonPasswords[strings.ToLower(value)]
			return !found
		},
		Error: ValidationError{
			Field:   field,
			Message: "password is too common, please choose a different one",
		},
	}
}

// Matches requires two values to be identical, e.g. password and its
// confirmation.
func Matches(field, value, other string) Rule {
	return Rule{
		Check: func() bool { return value == other },
		Error: ValidationError{
			Field:   field,
			Message: "values do not match",
		},
	}
}
