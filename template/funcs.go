package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Func is a helper invoked by {% call helper name args... %}. value is the
// variable's value, or nil when it is missing. args are the literal
// arguments that follow the variable name.
type Func func(value any, args []string) (string, error)

// defaultFuncs returns the built-in helpers.
func defaultFuncs() map[string]Func {
	return map[string]Func{
		"upper":    textFunc(strings.ToUpper),
		"lower":    textFunc(strings.ToLower),
		"trim":     textFunc(strings.TrimSpace),
		"escape":   textFunc(escapeHTML),
		"truncate": truncateFunc,
		"indent":   indentFunc,
		"wrap":     wrapFunc,
		"replace":  replaceFunc,
		"default":  defaultFunc,
		"json":     jsonFunc,
	}
}

// textFunc adapts a string transform that takes no arguments.
func textFunc(fn func(string) string) Func {
	return func(value any, args []string) (string, error) {
		if len(args) != 0 {
			return "", fmt.Errorf("takes no arguments, got %d", len(args))
		}
		return fn(Text(value)), nil
	}
}

func truncateFunc(value any, args []string) (string, error) {
	n, err := intArg(args)
	if err != nil {
		return "", err
	}
	return truncate(Text(value), n), nil
}

func indentFunc(value any, args []string) (string, error) {
	n, err := intArg(args)
	if err != nil {
		return "", err
	}
	return indent(Text(value), n), nil
}

func wrapFunc(value any, args []string) (string, error) {
	n, err := intArg(args)
	if err != nil {
		return "", err
	}
	return wrap(Text(value), n), nil
}

func replaceFunc(value any, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("want OLD NEW, got %d arguments", len(args))
	}
	return strings.ReplaceAll(Text(value), args[0], args[1]), nil
}

// defaultFunc returns the fallback if the value is nil or renders empty.
func defaultFunc(value any, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("want FALLBACK, got %d arguments", len(args))
	}
	if s := Text(value); s != "" {
		return s, nil
	}
	return args[0], nil
}

// jsonFunc renders the value as pretty-printed JSON.
func jsonFunc(value any, args []string) (string, error) {
	if len(args) != 0 {
		return "", fmt.Errorf("takes no arguments, got %d", len(args))
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", value), nil
	}
	return string(b), nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("want one integer argument, got %d", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("argument %q: %w", args[0], err)
	}
	return n, nil
}

// truncate cuts a string to at most maxLen runes.
// If the string is longer than maxLen, it is truncated and "..." is appended.
// For maxLen <= 3, no ellipsis is added (the string is simply cut).
func truncate(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return firstRunes(s, maxLen)
	}
	return firstRunes(s, maxLen-3) + "..."
}

// firstRunes returns the prefix of s holding n runes.
func firstRunes(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// indent adds a prefix string to each line of the input.
func indent(s string, spaces int) string {
	if spaces <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// wrap wraps text at the specified width in runes, breaking on word boundaries.
// If width <= 0, the string is returned unchanged.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	var result strings.Builder
	var lineLen int

	words := strings.Fields(s)
	for _, word := range words {
		n := utf8.RuneCountInString(word)
		if lineLen+n > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += n
	}

	return result.String()
}
