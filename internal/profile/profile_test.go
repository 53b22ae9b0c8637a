package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
)

func writeProfile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeProfile(t, "catalog.yaml", `
identifier_column: SKU
columns: [Description, EAN]
sheet: Products
numeric_policy: all
min_token_length: 3
empty_field_policy: skip
case_insensitive_identifiers: true
`)
	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SKU", p.IdentifierColumn)
	assert.Equal(t, []string{"Description", "EAN"}, p.Columns)
	assert.Equal(t, "Products", p.Sheet)
	assert.True(t, p.CaseInsensitiveIdentifiers)
	assert.Equal(t, []string{".pdf", ".ai"}, p.Extensions(), "unset keys keep defaults")

	vo := p.VerifierOptions()
	assert.Equal(t, constants.NumericAll, vo.Matcher.Numeric)
	assert.Equal(t, 3, vo.Matcher.MinTokenLength)
	assert.Equal(t, constants.EmptyFieldSkip, vo.EmptyFields)

	so := p.SourceOptions()
	assert.Equal(t, "Products", so.Sheet)
	assert.Equal(t, "SKU", so.IdentifierColumn)
}

func TestLoadJSONAndTOML(t *testing.T) {
	j := writeProfile(t, "p.json", `{"columns": ["Colour"], "layout_extensions": ["PDF"]}`)
	p, err := Load(j)
	require.NoError(t, err)
	assert.Equal(t, []string{"Colour"}, p.Columns)
	assert.Equal(t, []string{".pdf"}, p.Extensions())
	assert.Equal(t, constants.IdentifierColumn, p.IdentifierColumn)

	tm := writeProfile(t, "p.toml", "numeric_columns = [\"EAN\", \"GTIN\"]\nmin_token_length = 2\n")
	p, err = Load(tm)
	require.NoError(t, err)
	assert.Equal(t, []string{"EAN", "GTIN"}, p.NumericColumns)
}

func TestLoadRejectsInvalidProfiles(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "colums: [Description]\n",
		"bad numeric":       "numeric_policy: sometimes\n",
		"bad empty policy":  "empty_field_policy: ignore\n",
		"zero token length": "min_token_length: 0\n",
		"bad extension":     "layout_extensions: [docx]\n",
		"empty identifier":  "identifier_column: \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeProfile(t, "p.yaml", body))
			require.Error(t, err)
			assert.True(t, common.IsConfigurationError(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, common.IsConfigurationError(err))
}

func TestDefaultMatchesBuiltins(t *testing.T) {
	d := Default()
	assert.Equal(t, constants.DefaultColumns, d.Columns)
	assert.Equal(t, constants.NumericIdentifierLike, d.MatcherOptions().Numeric)
	require.NoError(t, d.MatcherOptions().Validate())
}
