package template

import (
	"fmt"
	"regexp"
)

// Rule is a single textual rewrite applied to a document before rendering.
//
// Pattern is a Go regular expression (RE2 syntax, no delimiters). Every
// non-overlapping match is replaced by Replacement, which may reference
// capture groups as $1, ${1} or ${name}. The replacement usually produces a
// fragment such as "{% var $1 %}" that the renderer interprets later.
type Rule struct {
	// Name identifies the rule in logs and errors. It has no other meaning.
	Name string `json:"name" yaml:"name" toml:"name" jsonschema:"description=Identifier used in logs and errors"`

	// Pattern is the regular expression matched against the whole document.
	Pattern string `json:"pattern" yaml:"pattern" toml:"pattern" jsonschema:"required,description=RE2 regular expression"`

	// Replacement is expanded for each match. $1 or ${1} refer to capture groups.
	Replacement string `json:"replacement" yaml:"replacement" toml:"replacement" jsonschema:"description=Expansion template with $1 style backreferences"`
}

// NewRule returns a Rule with the given fields.
func NewRule(name, pattern, replacement string) Rule {
	return Rule{Name: name, Pattern: pattern, Replacement: replacement}
}

// Apply rewrites every match of the rule's pattern in doc.
func (r Rule) Apply(doc string) (string, error) {
	re, err := r.compile()
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(doc, r.Replacement), nil
}

// Validate reports whether the rule can be applied. Rendering never calls
// it; a bad pattern surfaces when the rule is applied.
func (r Rule) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("%w: %s: empty pattern", ErrMalformedRule, r.Name)
	}
	_, err := r.compile()
	return err
}

func (r Rule) compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRule, r.Name, err)
	}
	return re, nil
}
