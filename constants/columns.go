package constants

import (
	"strings"
)

// IdentifierColumn is the record source column holding the matching key.
const IdentifierColumn = "Item#"

// DefaultColumns are verified when the caller does not name any.
// The identifier column is listed so colorized workbooks find it; it is never verified.
var DefaultColumns = []string{
	IdentifierColumn,
	"EAN",
	"Name ENG",
	"Name in all our languages",
	"address under EAN/barcode",
	"origin (next to EAN/barcode)",
	"Batch no:",
}

// DefaultNumericColumns are always eligible for digit-only matching.
var DefaultNumericColumns = []string{"EAN"}

// ColumnKey canonicalizes a column header or field name for case-insensitive lookups.
func ColumnKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameColumn reports whether two header names refer to the same column.
func SameColumn(a, b string) bool {
	return ColumnKey(a) == ColumnKey(b)
}
