// Package matcher decides whether an expected field value occurs in extracted layout text.
package matcher

import (
	"strings"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

// DefaultMinTokenLength exempts single-rune tokens from the tokenized stage.
const DefaultMinTokenLength = 2

// Options configure the cascade.
type Options struct {
	MinTokenLength int
	Numeric        constants.NumericPolicy
	NumericColumns []string
}

// DefaultOptions returns the identifier-like numeric policy over constants.DefaultNumericColumns.
func DefaultOptions() Options {
	return Options{
		MinTokenLength: DefaultMinTokenLength,
		Numeric:        constants.NumericIdentifierLike,
		NumericColumns: append([]string(nil), constants.DefaultNumericColumns...),
	}
}

// Validate rejects unknown policies and negative thresholds.
func (o Options) Validate() error {
	if o.Numeric != "" && !o.Numeric.Valid() {
		return common.ConfigurationError("unknown numeric policy %q", o.Numeric)
	}
	if o.MinTokenLength < 0 {
		return common.ConfigurationError("min token length must not be negative, got %d", o.MinTokenLength)
	}
	return nil
}

// Matcher runs the strategy cascade. It holds no mutable state and is safe for concurrent use.
type Matcher struct {
	opts        Options
	numericCols map[string]struct{}
	strategies  []Strategy
}

// New builds a Matcher. Zero-valued options fall back to their defaults.
func New(opts Options) *Matcher {
	if opts.Numeric == "" {
		opts.Numeric = constants.NumericIdentifierLike
	}
	if opts.MinTokenLength == 0 {
		opts.MinTokenLength = DefaultMinTokenLength
	}
	if opts.NumericColumns == nil {
		opts.NumericColumns = constants.DefaultNumericColumns
	}
	cols := make(map[string]struct{}, len(opts.NumericColumns))
	for _, c := range opts.NumericColumns {
		cols[constants.ColumnKey(c)] = struct{}{}
	}
	return &Matcher{opts: opts, numericCols: cols, strategies: DefaultStrategies()}
}

// WithStrategies replaces the cascade; used to reorder or extend stages.
func (m *Matcher) WithStrategies(s []Strategy) *Matcher {
	cp := *m
	cp.strategies = append([]Strategy(nil), s...)
	return &cp
}

func (m *Matcher) Options() Options { return m.opts }

// NumericEligible reports whether the digit-only stage runs for this field and value.
func (m *Matcher) NumericEligible(field, expected string) bool {
	if m.opts.Numeric == constants.NumericAll {
		return true
	}
	if _, ok := m.numericCols[constants.ColumnKey(field)]; ok {
		return true
	}
	return numericFlavored(expected)
}

// Match checks one expected value; the first successful stage is recorded.
func (m *Matcher) Match(field, expected string, text *Text) entity.FieldMatchResult {
	res := entity.FieldMatchResult{
		Field:    field,
		Expected: expected,
		Strategy: constants.StrategyNone,
	}
	value := strings.TrimSpace(expected)
	if value == "" {
		res.NotApplicable = true
		return res
	}
	in := Input{
		Field:           field,
		Expected:        value,
		Text:            text,
		MinTokenLength:  m.opts.MinTokenLength,
		NumericEligible: m.NumericEligible(field, value),
	}
	for _, s := range m.strategies {
		if s.Match(in) {
			res.Matched = true
			res.Strategy = s.Name
			return res
		}
	}
	return res
}

// MatchString is a convenience for one-off checks against raw text.
func (m *Matcher) MatchString(field, expected, corpus string) entity.FieldMatchResult {
	return m.Match(field, expected, Prepare(corpus))
}
