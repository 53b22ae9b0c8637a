package entity

import (
	"strings"

	"github.com/joseph-ayodele/layout-verifier/constants"
)

// Record is one ground-truth row. Fields are keyed by constants.ColumnKey.
type Record struct {
	Identifier string            `json:"identifier"`
	Fields     map[string]string `json:"fields"`
	Row        int               `json:"row,omitempty"`
}

// NewRecord builds a Record, normalizing field names and trimming values.
func NewRecord(identifier string, fields map[string]string) Record {
	norm := make(map[string]string, len(fields))
	for k, v := range fields {
		key := constants.ColumnKey(k)
		if _, dup := norm[key]; dup {
			continue
		}
		norm[key] = strings.TrimSpace(v)
	}
	return Record{Identifier: strings.TrimSpace(identifier), Fields: norm}
}

// Value returns the expected value for field; absent fields read as empty.
func (r Record) Value(field string) string {
	return r.Fields[constants.ColumnKey(field)]
}

// Has reports whether the record carries the field at all.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[constants.ColumnKey(field)]
	return ok
}

// RecordSet is the loaded ground truth plus the header metadata needed for column resolution.
type RecordSet struct {
	IdentifierColumn string   `json:"identifier_column"`
	Columns          []string `json:"columns"`
	Records          []Record `json:"records"`
}

// HasColumn matches header names case-insensitively.
func (s *RecordSet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if constants.SameColumn(c, name) {
			return true
		}
	}
	return false
}

// Lookup returns the first record with the identifier.
func (s *RecordSet) Lookup(id string, caseInsensitive bool) (Record, bool) {
	for _, r := range s.Records {
		if r.Identifier == id || (caseInsensitive && strings.EqualFold(r.Identifier, id)) {
			return r, true
		}
	}
	return Record{}, false
}

// Index builds an identifier map; the first row wins and later duplicates are returned.
func (s *RecordSet) Index(caseInsensitive bool) (map[string]Record, []Record) {
	idx := make(map[string]Record, len(s.Records))
	var dups []Record
	for _, r := range s.Records {
		key := r.Identifier
		if caseInsensitive {
			key = strings.ToLower(key)
		}
		if _, ok := idx[key]; ok {
			dups = append(dups, r)
			continue
		}
		idx[key] = r
	}
	return idx, dups
}
