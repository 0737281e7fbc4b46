// Package ruleset loads template rules and data mappings from YAML, TOML
// and JSON files.
package ruleset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/tinytemplate/template"
)

// RuleSet is the contents of a rule-set file.
//
//	rules:
//	  - name: bold
//	    pattern: '\*\*(\w+)\*\*'
//	    replacement: '<b>{$1}</b>'
//	include_each: true
type RuleSet struct {
	// Rules are applied in order, before any included rules.
	Rules []template.Rule `json:"rules" yaml:"rules" toml:"rules" jsonschema:"required,description=Rules applied in order"`

	// IncludeEach appends template.EachRules.
	IncludeEach bool `json:"include_each,omitempty" yaml:"include_each,omitempty" toml:"include_each,omitempty" jsonschema:"description=Append the {#each name}...{/each} loop rules"`

	// IncludeImport appends template.ImportRule.
	IncludeImport bool `json:"include_import,omitempty" yaml:"include_import,omitempty" toml:"include_import,omitempty" jsonschema:"description=Append the {import:name} rule"`

	// IncludeHelpers appends template.HelperRule.
	IncludeHelpers bool `json:"include_helpers,omitempty" yaml:"include_helpers,omitempty" toml:"include_helpers,omitempty" jsonschema:"description=Append the {name|helper args} rule"`
}

// Load reads a rule-set file. The format follows the file extension.
func Load(path string) (*RuleSet, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	rs, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Decode parses and validates a rule set. Unknown keys are rejected.
func Decode(data []byte, format Format) (*RuleSet, error) {
	var rs RuleSet

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rs); err != nil && !isEmptyYAML(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRuleSet, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &rs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRuleSet, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys %s", ErrInvalidRuleSet, strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRuleSet, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks every rule and names unnamed rules rule-1, rule-2, ...
func (rs *RuleSet) Validate() error {
	for i := range rs.Rules {
		if rs.Rules[i].Name == "" {
			rs.Rules[i].Name = fmt.Sprintf("rule-%d", i+1)
		}
		if err := rs.Rules[i].Validate(); err != nil {
			return fmt.Errorf("%w: rule %d: %w", ErrInvalidRuleSet, i+1, err)
		}
	}
	return nil
}

// All returns the rules to pass to Render: the file's rules followed by
// the included rule groups.
func (rs *RuleSet) All() []template.Rule {
	if rs == nil {
		return nil
	}
	rules := make([]template.Rule, 0, len(rs.Rules)+5)
	rules = append(rules, rs.Rules...)
	if rs.IncludeEach {
		rules = append(rules, template.EachRules()...)
	}
	if rs.IncludeImport {
		rules = append(rules, template.ImportRule())
	}
	if rs.IncludeHelpers {
		rules = append(rules, template.HelperRule())
	}
	return rules
}

// Names returns the names of All in order.
func (rs *RuleSet) Names() []string {
	rules := rs.All()
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return names
}

// LoadData reads a data mapping file. The format follows the file extension.
func LoadData(path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	m, err := DecodeData(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// DecodeData parses a data mapping. The top level must be a mapping; an
// empty document yields an empty mapping.
func DecodeData(data []byte, format Format) (map[string]any, error) {
	m := make(map[string]any)

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
	case FormatJSON:
		if len(bytes.TrimSpace(data)) == 0 {
			return m, nil
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if m == nil {
		m = make(map[string]any)
	}
	return m, nil
}

// Keys returns the top-level keys of a data mapping in sorted order.
func Keys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isEmptyYAML reports the error yaml.v3 returns for an empty document.
func isEmptyYAML(err error) bool {
	return errors.Is(err, io.EOF)
}
