package constants

import "strings"

const (
	PDF = "PDF"
	AI  = "AI"
)

// AllowedExtensions holds the default layout file extensions picked up by directory scans.
var AllowedExtensions = map[string]struct{}{
	"ai":  {},
	"pdf": {},
}

// WorkbookExtensions are the record source formats the excel loader accepts.
var WorkbookExtensions = map[string]struct{}{
	"xlsx": {},
	"xlsm": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat returns the layout format for an extension, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "ai":
		return AI
	default:
		return ""
	}
}

// ExtensionSet builds a lookup set from a user supplied list; empty input yields AllowedExtensions.
func ExtensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return AllowedExtensions
	}
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if n := NormalizeExt(e); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
