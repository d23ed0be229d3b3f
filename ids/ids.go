// Package ids validates and normalises the external identifiers the backend
// stores: ORCID iDs and OpenAlex author/work ids.
package ids

import (
	"regexp"
	"strings"
)

var (
	orcidPattern  = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
	authorPattern = regexp.MustCompile(`^A\d+$`)
	workPattern   = regexp.MustCompile(`^W\d+$`)
)

const (
	openAlexPrefix = "https://openalex.org/"
	maxOpaqueLen   = 200
)

// ValidORCID reports whether s is a well-formed ORCID iD with a correct
// ISO 7064 11-2 check character.
func ValidORCID(s string) bool {
	if !orcidPattern.MatchString(s) {
		return false
	}
	digits := strings.ReplaceAll(s, "-", "")
	total := 0
	for _, r := range digits[:15] {
		total = (total + int(r-'0')) * 2
	}
	check := (12 - total%11) % 11
	want := byte('0' + check)
	if check == 10 {
		want = 'X'
	}
	return digits[15] == want
}

// NormalizeORCID strips the orcid.org URL prefix and upper-cases the check
// character.
func NormalizeORCID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	s = strings.TrimPrefix(s, "http://orcid.org/")
	return strings.ToUpper(s)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, openAlexPrefix)
	s = strings.TrimPrefix(s, "http://openalex.org/")
	return strings.ToUpper(s)
}

// NormalizeAuthorID returns the bare OpenAlex author tail (A123...) and
// whether the input had that shape.
func NormalizeAuthorID(s string) (string, bool) {
	t := tail(s)
	return t, authorPattern.MatchString(t)
}

// NormalizePaperID returns the id a library item is stored under. OpenAlex
// work ids are reduced to their W tail; other ids are kept as given as long
// as they are non-empty and short.
func NormalizePaperID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if t := tail(s); workPattern.MatchString(t) {
		return t, true
	}
	if s == "" || len(s) > maxOpaqueLen {
		return "", false
	}
	return s, true
}
