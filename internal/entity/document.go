package entity

import "path/filepath"

// Document is a layout file handed to the verifier. IdentifierOverride, when set, bypasses filename parsing.
type Document struct {
	Path               string `json:"path"`
	IdentifierOverride string `json:"identifier_override,omitempty"`
}

// Name is the base filename.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// Corpus is the extracted text of one document.
type Corpus struct {
	Document   Document `json:"document"`
	Identifier string   `json:"identifier"`
	Text       string   `json:"text"`
	Pages      int      `json:"pages,omitempty"`
}
