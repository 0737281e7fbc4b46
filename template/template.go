package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Loader supplies document text by name.
type Loader interface {
	Load(name string) (string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) (string, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (string, error) {
	return f(name)
}

// Template is a loaded document. It is immutable after construction, so a
// single Template may be rendered concurrently.
type Template struct {
	name   string
	source string
	opts   *options
}

// New loads the named document through loader. Imports inside the
// document are resolved through the same loader.
func New(loader Loader, name string, opts ...Option) (*Template, error) {
	o := newOptions(opts)
	o.loader = loader
	return load(name, o)
}

// Parse creates a Template from text already in memory.
func Parse(name, text string, opts ...Option) (*Template, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: %s: empty document", ErrSourceNotFound, name)
	}
	return &Template{name: name, source: text, opts: newOptions(opts)}, nil
}

func load(name string, o *options) (*Template, error) {
	if o.loader == nil {
		return nil, fmt.Errorf("%w: %s: no loader configured", ErrSourceNotFound, name)
	}
	text, err := o.loader.Load(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, name, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: %s: empty document", ErrSourceNotFound, name)
	}
	return &Template{name: name, source: text, opts: o}, nil
}

// Name returns the name the template was loaded under.
func (t *Template) Name() string {
	return t.name
}

// Source returns the document text as loaded.
func (t *Template) Source() string {
	return t.source
}

// Render applies rules followed by the built-in rules to the document,
// then executes the result against data. Output is returned only when the
// whole render succeeds.
func (t *Template) Render(rules []Rule, data map[string]any) (string, error) {
	return t.RenderContext(context.Background(), rules, data)
}

// RenderContext is Render with cancellation. ctx is checked between
// fragments and before each import.
func (t *Template) RenderContext(ctx context.Context, rules []Rule, data map[string]any) (string, error) {
	return t.render(ctx, rules, data, 0)
}

// Rewrite returns the document after rules and the built-in rules have
// been applied, without executing it.
func (t *Template) Rewrite(rules []Rule) (string, error) {
	doc, err := t.rewrite(context.Background(), withBuiltins(rules))
	if err != nil {
		return "", err
	}
	return restoreLiterals(doc), nil
}

func (t *Template) render(ctx context.Context, rules []Rule, data map[string]any, depth int) (string, error) {
	doc, err := t.rewrite(ctx, withBuiltins(rules))
	if err != nil {
		return "", err
	}

	nodes, err := parseFragments(doc, t.opts.funcs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.name, err)
	}

	st := &renderState{
		ctx:   ctx,
		tmpl:  t,
		rules: rules,
		scope: NewScope(data),
		depth: depth,
	}
	if err := st.exec(nodes); err != nil {
		return "", err
	}
	return st.out.String(), nil
}

// rewrite applies each rule to the output of the previous one.
func (t *Template) rewrite(ctx context.Context, rules []Rule) (string, error) {
	logger := t.opts.logger
	debug := logger.Enabled(ctx, slog.LevelDebug)

	doc := escapeLiterals(t.source)
	for _, rule := range rules {
		re, err := rule.compile()
		if err != nil {
			return "", fmt.Errorf("%s: %w", t.name, err)
		}
		if debug {
			logger.DebugContext(ctx, "applying rule",
				slog.String("template", t.name),
				slog.String("rule", rule.Name),
				slog.Int("matches", len(re.FindAllStringIndex(doc, -1))))
		}
		doc = re.ReplaceAllString(doc, rule.Replacement)
	}
	return doc, nil
}

func withBuiltins(rules []Rule) []Rule {
	all := make([]Rule, 0, len(rules)+2)
	all = append(all, rules...)
	return append(all, BuiltinRules()...)
}

// renderState is the mutable context of one render. Imports get their own.
type renderState struct {
	ctx   context.Context
	tmpl  *Template
	rules []Rule
	scope *Scope
	depth int
	out   strings.Builder
}

func (s *renderState) exec(nodes []node) error {
	for _, n := range nodes {
		if err := s.ctx.Err(); err != nil {
			return err
		}

		switch n := n.(type) {
		case textNode:
			s.out.WriteString(string(n))
		case variableNode:
			s.out.WriteString(lookup(s.scope, n.name, n.escape))
		case *loopNode:
			if err := s.loop(n); err != nil {
				return err
			}
		case wrapNode:
			v, _ := s.scope.Lookup(n.name)
			s.scope.Wrap(v)
		case unwrapNode:
			s.scope.Unwrap()
		case importNode:
			text, err := s.importFile(n.name)
			if err != nil {
				return err
			}
			s.out.WriteString(text)
		case callNode:
			v, _ := s.scope.Lookup(n.name)
			text, err := s.tmpl.opts.funcs[n.helper](v, n.args)
			if err != nil {
				return fmt.Errorf("%w: %s: %s %s: %w", ErrExecute, s.tmpl.name, n.helper, n.name, err)
			}
			s.out.WriteString(text)
		default:
			return fmt.Errorf("%w: unexpected node %T", ErrMalformedFragment, n)
		}
	}
	return nil
}

// loop renders the body once per element, each time inside its own Wrap.
func (s *renderState) loop(n *loopNode) error {
	v, ok := s.scope.Lookup(n.name)
	items, iterable := elements(v)
	if !iterable {
		s.tmpl.opts.logger.DebugContext(s.ctx, "loop over non-list value",
			slog.String("template", s.tmpl.name),
			slog.String("name", n.name),
			slog.Bool("present", ok))
		return nil
	}

	for _, item := range items {
		if n.item != "" {
			s.scope.Wrap(nil)
			s.scope.Set(n.item, item)
		} else {
			s.scope.Wrap(item)
		}
		err := s.exec(n.body)
		s.scope.Unwrap()
		if err != nil {
			return err
		}
	}
	return nil
}

// importFile renders another document with this render's rules and a copy
// of the current mapping.
func (s *renderState) importFile(name string) (string, error) {
	depth := s.depth + 1
	if depth > s.tmpl.opts.maxImportDepth {
		return "", fmt.Errorf("%w: %s imports %s at depth %d", ErrImportDepth, s.tmpl.name, name, depth)
	}

	s.tmpl.opts.logger.DebugContext(s.ctx, "importing template",
		slog.String("template", s.tmpl.name),
		slog.String("import", name),
		slog.Int("depth", depth))

	child, err := load(name, s.tmpl.opts)
	if err != nil {
		return "", fmt.Errorf("%s: import: %w", s.tmpl.name, err)
	}
	text, err := child.render(s.ctx, s.rules, s.scope.Snapshot(), depth)
	if err != nil {
		if errors.Is(err, ErrImportDepth) {
			return "", err
		}
		return "", fmt.Errorf("%s: import %s: %w", s.tmpl.name, name, err)
	}
	return text, nil
}
