package roster

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// The filename convention is the only place identity is derived from file
// names. If this ever moves to an explicit registration step, only this file
// changes.
//
//	<StudentName>_<anything>.<ext>  ->  name = "StudentName"
//	<StudentName>.<ext>             ->  name = "StudentName"
//
// Dashes inside the name part become spaces and the result is title-cased,
// so "jane-doe_02.jpg" yields "Jane Doe".

var titleCaser = cases.Title(language.Und)

// NameFromFilename derives a student's display name from a reference photo
// filename.
func NameFromFilename(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if i := strings.Index(stem, "_"); i >= 0 {
		stem = stem[:i]
	}
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCaser.String(stem)
}

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName normalizes a display name for comparison (lowercase, no
// diacritics, dashes to spaces).
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}
