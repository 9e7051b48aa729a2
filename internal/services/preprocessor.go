package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText canonicalizes user-supplied catalog text before storage so
// that category and brand lookups compare equal regardless of the Unicode
// composition or stray whitespace the client sent.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
