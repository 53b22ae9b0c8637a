package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/internal/profile"
)

// overrides are profile fields that can be set per invocation.
type overrides struct {
	sheet          string
	idColumn       string
	columns        []string
	numericPolicy  string
	numericColumns []string
	minTokenLength int
	emptyFields    string
	caseInsensIDs  bool
	extensions     []string
}

func (o *overrides) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&o.sheet, "sheet", "", "worksheet holding the catalog (default: first sheet)")
	pf.StringVar(&o.idColumn, "id-column", "", "identifier column header")
	pf.StringSliceVar(&o.columns, "columns", nil, "columns to verify (default: profile columns)")
	pf.StringVar(&o.numericPolicy, "numeric-policy", "", "digit-only matching: identifier-like or all")
	pf.StringSliceVar(&o.numericColumns, "numeric-columns", nil, "columns always eligible for digit-only matching")
	pf.IntVar(&o.minTokenLength, "min-token-length", 0, "shortest token the tokenized stage requires")
	pf.StringVar(&o.emptyFields, "empty-fields", "", "empty expected values: missing or skip")
	pf.BoolVar(&o.caseInsensIDs, "case-insensitive-ids", false, "match layout identifiers to records ignoring case")
	pf.StringSliceVar(&o.extensions, "ext", nil, "layout extensions to scan (default: pdf, ai)")
}

func (o *overrides) apply(p *profile.Profile) {
	if o.sheet != "" {
		p.Sheet = o.sheet
	}
	if o.idColumn != "" {
		p.IdentifierColumn = o.idColumn
	}
	if len(o.columns) > 0 {
		p.Columns = o.columns
	}
	if o.numericPolicy != "" {
		p.NumericPolicy = o.numericPolicy
	}
	if len(o.numericColumns) > 0 {
		p.NumericColumns = o.numericColumns
	}
	if o.minTokenLength > 0 {
		p.MinTokenLength = o.minTokenLength
	}
	if o.emptyFields != "" {
		p.EmptyFieldPolicy = o.emptyFields
	}
	if o.caseInsensIDs {
		p.CaseInsensitiveIdentifiers = true
	}
	if len(o.extensions) > 0 {
		p.LayoutExtensions = o.extensions
	}
}
