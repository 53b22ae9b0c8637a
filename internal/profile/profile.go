// Package profile loads verification profiles: reusable settings for a catalog's column layout and matching policy.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/common"
	"github.com/joseph-ayodele/layout-verifier/internal/core"
	"github.com/joseph-ayodele/layout-verifier/internal/matcher"
	"github.com/joseph-ayodele/layout-verifier/internal/source"
)

type Profile struct {
	IdentifierColumn           string   `mapstructure:"identifier_column" json:"identifier_column"`
	Columns                    []string `mapstructure:"columns" json:"columns"`
	Sheet                      string   `mapstructure:"sheet" json:"sheet,omitempty"`
	NumericPolicy              string   `mapstructure:"numeric_policy" json:"numeric_policy"`
	NumericColumns             []string `mapstructure:"numeric_columns" json:"numeric_columns"`
	MinTokenLength             int      `mapstructure:"min_token_length" json:"min_token_length"`
	EmptyFieldPolicy           string   `mapstructure:"empty_field_policy" json:"empty_field_policy"`
	CaseInsensitiveIdentifiers bool     `mapstructure:"case_insensitive_identifiers" json:"case_insensitive_identifiers"`
	LayoutExtensions           []string `mapstructure:"layout_extensions" json:"layout_extensions"`
}

func Default() Profile {
	return Profile{
		IdentifierColumn: constants.IdentifierColumn,
		Columns:          append([]string(nil), constants.DefaultColumns...),
		NumericPolicy:    string(constants.NumericIdentifierLike),
		NumericColumns:   append([]string(nil), constants.DefaultNumericColumns...),
		MinTokenLength:   matcher.DefaultMinTokenLength,
		EmptyFieldPolicy: string(constants.EmptyFieldMissing),
		LayoutExtensions: []string{"pdf", "ai"},
	}
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "identifier_column": {"type": "string", "minLength": 1},
    "columns": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "sheet": {"type": "string"},
    "numeric_policy": {"enum": ["identifier-like", "all"]},
    "numeric_columns": {"type": "array", "items": {"type": "string"}},
    "min_token_length": {"type": "integer", "minimum": 1},
    "empty_field_policy": {"enum": ["missing", "skip"]},
    "case_insensitive_identifiers": {"type": "boolean"},
    "layout_extensions": {"type": "array", "minItems": 1, "items": {"enum": ["pdf", "ai", ".pdf", ".ai"]}}
  }
}`

var schema = jsonschema.MustCompileString("profile.schema.json", schemaJSON)

// Load reads a YAML, JSON or TOML profile. Keys absent from the file keep their defaults.
func Load(path string) (Profile, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return Profile{}, common.ConfigurationError("profile %s not found", path)
		}
		return Profile{}, common.ConfigurationError("read profile %s: %v", path, err)
	}
	return decode(v, path)
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("identifier_column", d.IdentifierColumn)
	v.SetDefault("columns", d.Columns)
	v.SetDefault("numeric_policy", d.NumericPolicy)
	v.SetDefault("numeric_columns", d.NumericColumns)
	v.SetDefault("min_token_length", d.MinTokenLength)
	v.SetDefault("empty_field_policy", d.EmptyFieldPolicy)
	v.SetDefault("case_insensitive_identifiers", d.CaseInsensitiveIdentifiers)
	v.SetDefault("layout_extensions", d.LayoutExtensions)
}

func decode(v *viper.Viper, path string) (Profile, error) {
	if err := validate(v.AllSettings()); err != nil {
		return Profile{}, common.ConfigurationError("profile %s: %v", path, err)
	}
	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, common.ConfigurationError("decode profile %s: %v", path, err)
	}
	return p, nil
}

// validate round-trips the settings through JSON so the schema sees plain JSON values.
func validate(settings map[string]any) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("does not match schema: %w", err)
	}
	return nil
}

func (p Profile) MatcherOptions() matcher.Options {
	return matcher.Options{
		MinTokenLength: p.MinTokenLength,
		Numeric:        constants.NumericPolicy(p.NumericPolicy),
		NumericColumns: append([]string{}, p.NumericColumns...),
	}
}

func (p Profile) VerifierOptions() core.VerifierOptions {
	return core.VerifierOptions{
		Matcher:     p.MatcherOptions(),
		EmptyFields: constants.EmptyFieldPolicy(p.EmptyFieldPolicy),
	}
}

func (p Profile) SourceOptions() source.Options {
	return source.Options{Sheet: p.Sheet, IdentifierColumn: p.IdentifierColumn}
}

// Extensions returns the layout extensions normalized to ".ext".
func (p Profile) Extensions() []string {
	out := make([]string, 0, len(p.LayoutExtensions))
	for _, e := range p.LayoutExtensions {
		out = append(out, "."+constants.NormalizeExt(e))
	}
	return out
}
