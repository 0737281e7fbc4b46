package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Text returns the text form a value renders as. Strings render as is,
// numbers and booleans in their canonical form, and maps, slices and
// structs as compact JSON. nil renders as the empty string.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}

	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return ""
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, rv.Type().Bits())
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Sprint(rv.Interface())
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// escapeHTML escapes the five HTML special characters, using named
// entities where HTML has one.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// lookup returns the rendered form of a variable. A missing variable
// renders as its own marker, {name}, so partially rendered output stays
// readable. The marker goes straight to output and is never rewritten again.
func lookup(s *Scope, name string, escape bool) string {
	v, ok := s.Lookup(name)
	if !ok {
		return "{" + name + "}"
	}
	text := Text(v)
	if escape {
		return escapeHTML(text)
	}
	return text
}
