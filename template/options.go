package template

import (
	"log/slog"
	"maps"
)

// DefaultMaxImportDepth bounds nested imports when no limit is configured.
const DefaultMaxImportDepth = 32

// Option configures a Template.
type Option func(*options)

type options struct {
	loader         Loader
	logger         *slog.Logger
	funcs          map[string]Func
	maxImportDepth int
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:         slog.Default(),
		funcs:          defaultFuncs(),
		maxImportDepth: DefaultMaxImportDepth,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for debug output during rendering.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoader sets the loader used to resolve {% import %} fragments.
// New sets it implicitly; Parse needs it only when the document imports.
func WithLoader(loader Loader) Option {
	return func(o *options) {
		o.loader = loader
	}
}

// WithFuncs adds helpers, replacing built-ins of the same name.
func WithFuncs(funcs map[string]Func) Option {
	return func(o *options) {
		maps.Copy(o.funcs, funcs)
	}
}

// WithMaxImportDepth limits how deeply imports may nest. Values below one
// disable imports entirely.
func WithMaxImportDepth(depth int) Option {
	return func(o *options) {
		o.maxImportDepth = depth
	}
}
