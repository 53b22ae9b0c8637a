package core

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
	"github.com/joseph-ayodele/layout-verifier/internal/matcher"
)

type VerifierOptions struct {
	Matcher     matcher.Options
	EmptyFields constants.EmptyFieldPolicy
}

func DefaultVerifierOptions() VerifierOptions {
	return VerifierOptions{
		Matcher:     matcher.DefaultOptions(),
		EmptyFields: constants.EmptyFieldMissing,
	}
}

// Verifier checks one record against one corpus. It is a pure function of its inputs.
type Verifier struct {
	matcher *matcher.Matcher
	empty   constants.EmptyFieldPolicy
}

func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	if err := opts.Matcher.Validate(); err != nil {
		return nil, err
	}
	if opts.EmptyFields == "" {
		opts.EmptyFields = constants.EmptyFieldMissing
	}
	if !opts.EmptyFields.Valid() {
		return nil, common.ConfigurationError("unknown empty field policy %q", opts.EmptyFields)
	}
	return &Verifier{matcher: matcher.New(opts.Matcher), empty: opts.EmptyFields}, nil
}

func (v *Verifier) Matcher() *matcher.Matcher { return v.matcher }

// Verify matches every column in order. Columns the record lacks read as empty values.
func (v *Verifier) Verify(rec entity.Record, doc entity.Document, text *matcher.Text, columns []string) entity.ProductVerificationResult {
	res := entity.ProductVerificationResult{
		Identifier: rec.Identifier,
		Document:   doc.Name(),
		Path:       doc.Path,
		Status:     constants.DocumentStatusVerified,
		Fields:     make([]entity.FieldMatchResult, 0, len(columns)),
	}
	for _, col := range columns {
		expected := rec.Value(col)
		if v.empty == constants.EmptyFieldSkip && strings.TrimSpace(expected) == "" {
			continue
		}
		res.Fields = append(res.Fields, v.matcher.Match(col, expected, text))
	}
	res.Tally()
	return res
}

// ResolveColumns turns the requested column list into the verified set:
// defaults when empty, identifier removed, duplicates folded, and names outside the source header dropped.
func ResolveColumns(requested []string, set *entity.RecordSet, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(requested) == 0 {
		requested = constants.DefaultColumns
	}
	idCol := constants.IdentifierColumn
	if set != nil && set.IdentifierColumn != "" {
		idCol = set.IdentifierColumn
	}

	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		name = strings.TrimSpace(name)
		key := constants.ColumnKey(name)
		if key == "" || constants.SameColumn(name, idCol) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if set != nil && len(set.Columns) > 0 {
			header, ok := headerFor(set.Columns, name)
			if !ok {
				logger.Warn("column not in record source, skipping", "column", name)
				continue
			}
			name = header
		}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, common.ConfigurationError("column set %q references no valid fields", requested)
	}
	return out, nil
}

func headerFor(headers []string, name string) (string, bool) {
	for _, h := range headers {
		if constants.SameColumn(h, name) {
			return strings.TrimSpace(h), true
		}
	}
	return "", false
}
