package template

import (
	"fmt"
	"strings"
)

const (
	fragmentOpen  = "{%"
	fragmentClose = "%}"

	// literalOpen stands in for a "{%" written in the source document
	// while rules run, so only rule output can open a fragment.
	literalOpen = "\uFDD0"
)

// escapeLiterals hides every "{%" already present in a source document.
func escapeLiterals(s string) string {
	return strings.ReplaceAll(s, fragmentOpen, literalOpen)
}

// restoreLiterals turns hidden source "{%" back into text.
func restoreLiterals(s string) string {
	return strings.ReplaceAll(s, literalOpen, fragmentOpen)
}

// node is one segment of a rewritten document.
type node interface {
	node()
}

// textNode is literal text emitted verbatim.
type textNode string

// variableNode is {% var name %} or {% escape name %}.
type variableNode struct {
	name   string
	escape bool
}

// loopNode is {% each name %} or {% each name as item %} with its body.
type loopNode struct {
	name string
	item string
	body []node
	pos  int
}

// wrapNode is {% wrap name %}.
type wrapNode struct {
	name string
}

// unwrapNode is {% unwrap %}.
type unwrapNode struct{}

// importNode is {% import name %}.
type importNode struct {
	name string
}

// callNode is {% call helper name args... %}.
type callNode struct {
	helper string
	name   string
	args   []string
}

func (textNode) node()     {}
func (variableNode) node() {}
func (*loopNode) node()    {}
func (wrapNode) node()     {}
func (unwrapNode) node()   {}
func (importNode) node()   {}
func (callNode) node()     {}

// parseFragments splits a rewritten document into literal text and
// fragment nodes. Loop bodies are nested under their loopNode.
func parseFragments(doc string, funcs map[string]Func) ([]node, error) {
	var (
		root  []node
		loops []*loopNode
	)

	add := func(n node) {
		if len(loops) == 0 {
			root = append(root, n)
			return
		}
		top := loops[len(loops)-1]
		top.body = append(top.body, n)
	}

	pos := 0
	for pos < len(doc) {
		start := strings.Index(doc[pos:], fragmentOpen)
		if start < 0 {
			add(textNode(restoreLiterals(doc[pos:])))
			break
		}
		start += pos
		if start > pos {
			add(textNode(restoreLiterals(doc[pos:start])))
		}

		end := closingIndex(doc[start+len(fragmentOpen):])
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated fragment at offset %d", ErrMalformedFragment, start)
		}
		end += start + len(fragmentOpen)
		body := doc[start+len(fragmentOpen) : end]
		pos = end + len(fragmentClose)

		args, err := splitArguments(body)
		if err != nil {
			return nil, fmt.Errorf("%w: at offset %d: %w", ErrMalformedFragment, start, err)
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: empty fragment at offset %d", ErrMalformedFragment, start)
		}

		for i := range args {
			args[i] = restoreLiterals(args[i])
		}
		op, args := args[0], args[1:]
		bad := func(usage string) error {
			return fmt.Errorf("%w: %q at offset %d, want {%% %s %%}", ErrMalformedFragment, strings.TrimSpace(body), start, usage)
		}

		switch op {
		case "var", "escape":
			if len(args) != 1 {
				return nil, bad(op + " NAME")
			}
			add(variableNode{name: args[0], escape: op == "escape"})
		case "each":
			loop := &loopNode{pos: start}
			switch {
			case len(args) == 1:
				loop.name = args[0]
			case len(args) == 3 && args[1] == "as":
				loop.name, loop.item = args[0], args[2]
			default:
				return nil, bad("each NAME [as ITEM]")
			}
			add(loop)
			loops = append(loops, loop)
		case "end":
			if len(args) != 0 {
				return nil, bad("end")
			}
			if len(loops) == 0 {
				return nil, fmt.Errorf("%w: end without each at offset %d", ErrMalformedFragment, start)
			}
			loops = loops[:len(loops)-1]
		case "wrap":
			if len(args) != 1 {
				return nil, bad("wrap NAME")
			}
			add(wrapNode{name: args[0]})
		case "unwrap":
			if len(args) != 0 {
				return nil, bad("unwrap")
			}
			add(unwrapNode{})
		case "import":
			if len(args) != 1 || args[0] == "" {
				return nil, bad("import NAME")
			}
			add(importNode{name: args[0]})
		case "call":
			if len(args) < 2 {
				return nil, bad("call HELPER NAME [ARGS...]")
			}
			if _, ok := funcs[args[0]]; !ok {
				return nil, fmt.Errorf("%w: unknown helper %q at offset %d", ErrMalformedFragment, args[0], start)
			}
			add(callNode{helper: args[0], name: args[1], args: args[2:]})
		default:
			return nil, fmt.Errorf("%w: unknown operation %q at offset %d", ErrMalformedFragment, op, start)
		}
	}

	if len(loops) > 0 {
		open := loops[len(loops)-1]
		return nil, fmt.Errorf("%w: each %s at offset %d has no end", ErrMalformedFragment, open.name, open.pos)
	}
	return root, nil
}

// closingIndex returns the offset of the first "%}" in s that is not inside
// double quotes, or -1.
func closingIndex(s string) int {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '"':
			inQuote = !inQuote
		case !inQuote && strings.HasPrefix(s[i:], fragmentClose):
			return i
		}
	}
	return -1
}

// splitArguments splits a fragment body on whitespace. Double quotes group
// an argument that contains spaces; the quotes are removed.
func splitArguments(s string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		inQuote bool
		quoted  bool
	)

	flush := func() {
		if current.Len() > 0 || quoted {
			parts = append(parts, current.String())
			current.Reset()
		}
		quoted = false
	}

	for _, ch := range s {
		switch {
		case ch == '"':
			inQuote = !inQuote
			quoted = true
		case !inQuote && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'):
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote in %q", strings.TrimSpace(s))
	}
	flush()

	return parts, nil
}
