package template

import (
	"maps"
	"reflect"
	"strings"
)

// Scope is the variable mapping visible to a render plus the stack of
// mappings saved by Wrap. Each render owns its own Scope.
//
// Wrap and Unwrap must be paired by the caller. An unmatched Wrap leaves
// the merged keys visible for the rest of the render; Scope does not
// guard against it.
type Scope struct {
	data  map[string]any
	stack []map[string]any
}

// NewScope returns a Scope whose current mapping is a copy of data.
func NewScope(data map[string]any) *Scope {
	s := &Scope{data: make(map[string]any, len(data))}
	maps.Copy(s.data, data)
	return s
}

// Lookup returns the value bound to name. A key bound to nil is reported
// as absent.
func (s *Scope) Lookup(name string) (any, bool) {
	v, ok := s.data[name]
	if !ok || isNil(v) {
		return nil, false
	}
	return v, true
}

// Set binds name in the current mapping.
func (s *Scope) Set(name string, value any) {
	s.data[name] = value
}

// Wrap saves a copy of the current mapping and merges the keys of element
// into it. Maps with string keys and structs expose keys; any other element
// merges nothing, but the mapping is still saved.
func (s *Scope) Wrap(element any) {
	s.stack = append(s.stack, maps.Clone(s.data))
	maps.Copy(s.data, entries(element))
}

// Unwrap restores the mapping saved by the most recent Wrap. With nothing
// saved the current mapping becomes empty.
func (s *Scope) Unwrap() {
	if len(s.stack) == 0 {
		s.data = make(map[string]any)
		return
	}
	last := len(s.stack) - 1
	s.data = s.stack[last]
	s.stack[last] = nil
	s.stack = s.stack[:last]
	if s.data == nil {
		s.data = make(map[string]any)
	}
}

// Depth returns the number of saved mappings.
func (s *Scope) Depth() int {
	return len(s.stack)
}

// Snapshot returns a copy of the current mapping.
func (s *Scope) Snapshot() map[string]any {
	return maps.Clone(s.data)
}

// entries returns the key/value pairs of a map or struct, or nil.
func entries(element any) map[string]any {
	switch e := element.(type) {
	case nil:
		return nil
	case map[string]any:
		return e
	case map[string]string:
		out := make(map[string]any, len(e))
		for k, v := range e {
			out[k] = v
		}
		return out
	}

	v := indirect(reflect.ValueOf(element))
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			out[name] = v.Field(i).Interface()
		}
		return out
	default:
		return nil
	}
}

// elements returns the items of a slice or array. []byte is text, not a list.
func elements(value any) ([]any, bool) {
	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return nil, false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = v.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
