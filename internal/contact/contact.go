// Package contact normalizes and checks the contact fields of a biography.
package contact

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is prefixed to local numbers.
const DefaultCountryCode = "62"

var (
	nonDialRe = regexp.MustCompile(`[^\d+]`)
	digitsRe  = regexp.MustCompile(`^\d+$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// NormalizeMSISDN rewrites a phone number in international form: spaces and
// punctuation are dropped, "08…" becomes "+628…", "62…" gains a leading "+"
// and numbers already starting with "+" are kept.
func NormalizeMSISDN(num string) string {
	s := nonDialRe.ReplaceAllString(strings.TrimSpace(num), "")
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "+"):
		return s
	case strings.HasPrefix(s, "0"):
		return "+" + DefaultCountryCode + s[1:]
	case strings.HasPrefix(s, DefaultCountryCode):
		return "+" + s
	case digitsRe.MatchString(s):
		return "+" + DefaultCountryCode + s
	}
	return s
}

// ValidEmail reports whether addr has the basic local@domain.tld shape.
func ValidEmail(addr string) bool {
	return emailRe.MatchString(addr)
}
