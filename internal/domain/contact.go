package domain

import (
	"strings"
	"unicode"
)

// NormalizePhone strips every non-digit character
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeEmail trims and case-folds an email address
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return ""
	}
	return strings.ToLower(email)
}

// IsBlank returns true for nil or whitespace-only strings
func IsBlank(s *string) bool {
	if s == nil {
		return true
	}
	return strings.IndexFunc(*s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
