package template

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"needs truncation", "hello world", 8, "hello..."},
		{"very short max", "hello", 3, "hel"},
		{"max of 1", "hello", 1, "h"},
		{"negative max", "hello", -2, ""},
		{"empty string", "", 10, ""},
		{"multi-byte runes", "héllo wörld", 5, "hé..."},
		{"multi-byte exact length", "héllo", 5, "héllo"},
		{"multi-byte short max", "日本語テキスト", 2, "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("got invalid UTF-8 %q", got)
			}
		})
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		spaces int
		want   string
	}{
		{"single line", "hello", 2, "  hello"},
		{"multiple lines", "line1\nline2", 4, "    line1\n    line2"},
		{"zero spaces", "hello", 0, "hello"},
		{"empty line kept", "a\n\nb", 1, " a\n \n b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indent(tt.input, tt.spaces)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"no wrap needed", "hello world", 20, "hello world"},
		{"wrap at word", "hello world", 6, "hello\nworld"},
		{"wrap long sentence", "the quick brown fox", 10, "the quick\nbrown fox"},
		{"zero width", "nowrap", 0, "nowrap"},
		{"negative width", "nowrap", -5, "nowrap"},
		{"single word longer than width", "superlongword", 5, "superlongword"},
		{"width counts runes", "héllo wörld", 11, "héllo wörld"},
		{"wrap multi-byte words", "日本 語テ キスト", 5, "日本 語テ\nキスト"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrap(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultFuncs(t *testing.T) {
	funcs := defaultFuncs()

	tests := []struct {
		name   string
		helper string
		value  any
		args   []string
		want   string
	}{
		{"upper", "upper", "abc", nil, "ABC"},
		{"lower number", "lower", 12, nil, "12"},
		{"trim", "trim", "  x  ", nil, "x"},
		{"escape", "escape", `"&'"`, nil, "&quot;&amp;&#039;"},
		{"truncate", "truncate", "hello world", []string{"8"}, "hello..."},
		{"indent", "indent", "a\nb", []string{"2"}, "  a\n  b"},
		{"wrap", "wrap", "the quick brown fox", []string{"10"}, "the quick\nbrown fox"},
		{"replace", "replace", "a-b-c", []string{"-", "+"}, "a+b+c"},
		{"default nil", "default", nil, []string{"none"}, "none"},
		{"default empty", "default", "", []string{"none"}, "none"},
		{"default zero kept", "default", 0, []string{"none"}, "0"},
		{"json", "json", map[string]string{"key": "value"}, nil, "{\n  \"key\": \"value\"\n}"},
		{"json nil", "json", nil, nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := funcs[tt.helper](tt.value, tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultFuncs_BadArguments(t *testing.T) {
	funcs := defaultFuncs()

	tests := []struct {
		helper string
		args   []string
	}{
		{"upper", []string{"extra"}},
		{"truncate", nil},
		{"truncate", []string{"ten"}},
		{"indent", []string{"1", "2"}},
		{"replace", []string{"only-one"}},
		{"default", nil},
		{"json", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.helper, func(t *testing.T) {
			if _, err := funcs[tt.helper]("value", tt.args); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

type stringerValue struct{}

func (stringerValue) String() string { return "stringer" }

type level int

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "s", "s"},
		{"bytes", []byte("b"), "b"},
		{"stringer", stringerValue{}, "stringer"},
		{"error", errors.New("boom"), "boom"},
		{"bool", false, "false"},
		{"int", -3, "-3"},
		{"named int", level(5), "5"},
		{"float32", float32(0.25), "0.25"},
		{"float64", 1e21, "1000000000000000000000"},
		{"pointer", func() *int { n := 9; return &n }(), "9"},
		{"nil pointer", (*int)(nil), ""},
		{"struct", struct {
			A int `json:"a"`
		}{1}, `{"a":1}`},
		{"slice", []any{1, "x"}, `[1,"x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.value)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
