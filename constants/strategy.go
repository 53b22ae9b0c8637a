package constants

// MatchStrategy names the cascade stage that located a field value.
type MatchStrategy string

const (
	StrategyExact             MatchStrategy = "exact"
	StrategyCaseInsensitive   MatchStrategy = "case-insensitive"
	StrategyTokenized         MatchStrategy = "tokenized"
	StrategyNumericNormalized MatchStrategy = "numeric-normalized"
	StrategyNone              MatchStrategy = "none"
)

// NumericPolicy decides which fields the digit-only stage runs for.
type NumericPolicy string

const (
	NumericIdentifierLike NumericPolicy = "identifier-like"
	NumericAll            NumericPolicy = "all"
)

// EmptyFieldPolicy decides how empty expected values are counted.
type EmptyFieldPolicy string

const (
	EmptyFieldMissing EmptyFieldPolicy = "missing" // counted as not-applicable misses
	EmptyFieldSkip    EmptyFieldPolicy = "skip"    // dropped from totals
)

func (p NumericPolicy) Valid() bool {
	return p == NumericIdentifierLike || p == NumericAll
}

func (p EmptyFieldPolicy) Valid() bool {
	return p == EmptyFieldMissing || p == EmptyFieldSkip
}
