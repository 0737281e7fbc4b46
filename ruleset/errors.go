package ruleset

import "errors"

// Sentinel errors for rule-set and data files.
var (
	// ErrUnsupportedFormat is returned for file extensions other than
	// .yaml, .yml, .toml and .json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidRuleSet is returned when a rule-set file cannot be decoded
	// or contains an invalid rule.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrInvalidData is returned when a data file cannot be decoded into a
	// mapping.
	ErrInvalidData = errors.New("invalid data file")
)
