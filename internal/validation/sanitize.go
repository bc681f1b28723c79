package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all HTML markup and unprintable characters from user text.
// Entities escaped by the policy are decoded again, since values are stored
// as plain text and escaped on output.
func Sanitize(s string) string {
	cleaned := html.UnescapeString(strictPolicy.Sanitize(s))
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, cleaned)
	return strings.TrimSpace(cleaned)
}

// SanitizePtr returns a sanitized copy of an optional value.
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := Sanitize(*s)
	return &v
}
