package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/layout-verifier/constants"
)

// Input is everything a strategy sees for one field check.
type Input struct {
	Field          string
	Expected       string
	Text           *Text
	MinTokenLength int
	// NumericEligible is decided by the Matcher from its NumericPolicy.
	NumericEligible bool
}

// Strategy is one stateless stage of the cascade.
type Strategy struct {
	Name  constants.MatchStrategy
	Match func(in Input) bool
}

// DefaultStrategies returns the cascade in evaluation order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: constants.StrategyExact, Match: matchExact},
		{Name: constants.StrategyCaseInsensitive, Match: matchCaseInsensitive},
		{Name: constants.StrategyTokenized, Match: matchTokenized},
		{Name: constants.StrategyNumericNormalized, Match: matchNumeric},
	}
}

func matchExact(in Input) bool {
	return strings.Contains(in.Text.raw, in.Expected)
}

func matchCaseInsensitive(in Input) bool {
	return strings.Contains(in.Text.folded, Fold(in.Expected))
}

func matchTokenized(in Input) bool {
	significant := 0
	for _, tok := range strings.Fields(Fold(in.Expected)) {
		if utf8.RuneCountInString(tok) < in.MinTokenLength {
			continue
		}
		significant++
		if !strings.Contains(in.Text.folded, tok) {
			return false
		}
	}
	return significant > 0
}

func matchNumeric(in Input) bool {
	if !in.NumericEligible {
		return false
	}
	want := Digits(in.Expected)
	if want == "" {
		return false
	}
	for _, seg := range in.Text.segments {
		if strings.Contains(seg, want) {
			return true
		}
	}
	return false
}
