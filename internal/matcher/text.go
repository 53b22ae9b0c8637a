package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Text is a corpus prepared once and shared read-only across field checks.
type Text struct {
	raw      string
	folded   string
	segments []string
}

// Prepare folds the corpus and builds its digit segments.
func Prepare(corpus string) *Text {
	return &Text{
		raw:      corpus,
		folded:   Fold(corpus),
		segments: digitSegments(corpus),
	}
}

func (t *Text) Raw() string { return t.raw }

func (t *Text) Empty() bool { return strings.TrimSpace(t.raw) == "" }

// Fold applies NFC composition and Unicode case folding. Whitespace is left as is.
func Fold(s string) string {
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(s))
}

// Digits keeps only decimal digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// digitSegments drops every non-digit; letters split the stream so digits of unrelated words never join.
func digitSegments(s string) []string {
	var segs []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			segs = append(segs, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsLetter(r):
			flush()
		}
	}
	flush()
	return segs
}

// numericFlavored holds for values made of digits and the separators space, '-', '.', '/'.
func numericFlavored(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-', r == '.', r == '/', unicode.IsSpace(r):
		default:
			return false
		}
	}
	return digits > 0
}
