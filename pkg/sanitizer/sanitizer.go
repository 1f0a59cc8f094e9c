// Package sanitizer normalizes untrusted identity input before it
// reaches validation or storage.
package sanitizer

import (
	"regexp"
	"strings"
)

var consecutiveDots = regexp.MustCompile(`\.{2,}`)

// NormalizeEmail lowercases and trims an email address and collapses
// consecutive dots in the local part. Anything that is not shaped like
// an address is returned trimmed and lowercased for the validator to
// reject.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, found := strings.Cut(email, "@")
	if !found || strings.Contains(domain, "@") {
		return email
	}

	local = consecutiveDots.ReplaceAllString(local, ".")
	local = strings.Trim(local, ".")

	return local + "@" + domain
}
