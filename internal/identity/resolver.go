// Package identity derives record identifiers from layout filenames.
package identity

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/entity"
)

// Stem strips directories and the final extension.
func Stem(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Resolve returns the text before the first whitespace of the filename stem.
// A stem without whitespace is returned whole.
func Resolve(filename string) (string, error) {
	stem := strings.TrimLeftFunc(Stem(filename), unicode.IsSpace)
	if i := strings.IndexFunc(stem, unicode.IsSpace); i >= 0 {
		stem = stem[:i]
	}
	if stem == "" {
		return "", fmt.Errorf("%w: no identifier in filename %q", common.ErrIdentityUnresolved, filename)
	}
	return stem, nil
}

// ResolveDocument honors the document override verbatim before falling back to the filename.
func ResolveDocument(doc entity.Document) (string, error) {
	if doc.IdentifierOverride != "" {
		return doc.IdentifierOverride, nil
	}
	return Resolve(doc.Path)
}
