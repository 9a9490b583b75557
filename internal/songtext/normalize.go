package songtext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketed  = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	featClause = regexp.MustCompile(`(^|\s)(feat|ft|featuring)\b\.?.*$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// diacriticFold decomposes characters and drops combining marks so that
// "Beyoncé" and "beyonce" normalize identically.
var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw artist or title string for comparison.
//
// Steps: lower-case, fold diacritics, strip parenthetical and bracketed
// annotations ("(Radio Edit)", "[Remastered]"), strip remaining punctuation,
// then drop feat/ft/featuring clauses and collapse whitespace. Empty input
// yields empty output.
//
// Punctuation is converted to spaces before the feat clause is stripped so a
// feat token adjoined by punctuation ("-ft.", "/ft") is visible to the clause
// pattern on the first pass. Normalize(Normalize(s)) == Normalize(s) for
// all s; intake-side and detection-side callers rely on that.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(diacriticFold, s); err == nil {
		s = folded
	}

	s = bracketed.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			// Punctuation becomes a separator so "AC/DC" keeps two tokens.
			b.WriteByte(' ')
		}
	}

	s = featClause.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
