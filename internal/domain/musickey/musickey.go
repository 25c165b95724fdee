// Package musickey canonicalizes and compares musical key tokens.
// A sheet's key field may legitimately list several interchangeable keys
// ("D, B"), interpreted as an OR set.
package musickey

import (
	"regexp"
	"strings"
)

var keyRe = regexp.MustCompile(`^[A-G][#b]?m?$`)

// Normalize canonicalizes a single key token: trims, uppercases the letter,
// maps Unicode accidentals to ASCII, lowercases the minor suffix.
// Returns "" for tokens that are not a key.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.NewReplacer("♯", "#", "♭", "b", "＃", "#").Replace(s)

	// Uppercase the note letter, fold the accidental/minor tail to lowercase.
	r := []rune(s)
	s = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	if !keyRe.MatchString(s) {
		return ""
	}
	return s
}

// IsValid reports whether s normalizes to a musical key.
func IsValid(s string) bool { return Normalize(s) != "" }

// Split parses a comma-separated key field into normalized tokens,
// dropping anything that is not a key.
func Split(field string) []string {
	if field == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(field, ",") {
		if k := Normalize(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Contains reports whether the OR set in field includes the requested key.
func Contains(field, key string) bool {
	want := Normalize(key)
	if want == "" {
		return false
	}
	for _, k := range Split(field) {
		if k == want {
			return true
		}
	}
	return false
}
