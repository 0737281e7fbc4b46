package template

import "errors"

// Sentinel errors for template operations.
var (
	// ErrSourceNotFound is returned when a document cannot be loaded or is empty.
	ErrSourceNotFound = errors.New("template source not found")

	// ErrMalformedRule is returned when a rule pattern is not a valid regular expression.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrMalformedFragment is returned when the rewritten document contains a
	// fragment the renderer cannot interpret.
	ErrMalformedFragment = errors.New("malformed fragment")

	// ErrExecute is returned when a helper function fails during rendering.
	ErrExecute = errors.New("template execution error")

	// ErrImportDepth is returned when nested imports exceed the configured depth.
	ErrImportDepth = errors.New("import depth exceeded")
)
