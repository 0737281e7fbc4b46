package ruleset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tinytemplate/template"
)

const yamlRules = `
rules:
  - name: bold
    pattern: '\*\*(\w+)\*\*'
    replacement: '<b>{$1}</b>'
  - pattern: '~~'
    replacement: ''
include_each: true
`

const tomlRules = `
include_import = true

[[rules]]
name = "bold"
pattern = '\*\*(\w+)\*\*'
replacement = '<b>{$1}</b>'
`

const jsonRules = `{
  "rules": [
    {"name": "bold", "pattern": "\\*\\*(\\w+)\\*\\*", "replacement": "<b>{$1}</b>"}
  ],
  "include_helpers": true
}`

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		format    Format
		wantNames []string
	}{
		{
			name:      "yaml",
			data:      yamlRules,
			format:    FormatYAML,
			wantNames: []string{"bold", "rule-2", "each_as", "each", "end_each"},
		},
		{
			name:      "toml",
			data:      tomlRules,
			format:    FormatTOML,
			wantNames: []string{"bold", "import"},
		},
		{
			name:      "json",
			data:      jsonRules,
			format:    FormatJSON,
			wantNames: []string{"bold", "helper"},
		},
		{
			name:      "empty yaml",
			data:      "",
			format:    FormatYAML,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, rs.Names())
		})
	}
}

func TestDecode_RendersWithRules(t *testing.T) {
	rs, err := Decode([]byte(yamlRules), FormatYAML)
	require.NoError(t, err)

	tmpl, err := template.Parse("doc", "**who** ~~{#each items}{x}{/each}")
	require.NoError(t, err)
	got, err := tmpl.Render(rs.All(), map[string]any{
		"who":   "you",
		"items": []any{map[string]any{"x": 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "<b>you</b> 1", got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  Format
		wantErr error
	}{
		{"yaml unknown key", "rulez: []", FormatYAML, ErrInvalidRuleSet},
		{"yaml bad pattern", "rules:\n  - pattern: '('\n", FormatYAML, ErrInvalidRuleSet},
		{"yaml empty pattern", "rules:\n  - name: x\n", FormatYAML, template.ErrMalformedRule},
		{"toml unknown key", "extra = 1", FormatTOML, ErrInvalidRuleSet},
		{"toml syntax", "rules = [", FormatTOML, ErrInvalidRuleSet},
		{"json unknown key", `{"nope": true}`, FormatJSON, ErrInvalidRuleSet},
		{"json syntax", `{`, FormatJSON, ErrInvalidRuleSet},
		{"unknown format", "", Format("ini"), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlRules), 0o644))

	rs, err := Load(path)
	require.NoError(t, err)
	assert.True(t, rs.IncludeImport)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, `\*\*(\w+)\*\*`, rs.Rules[0].Pattern)

	_, err = Load(filepath.Join(dir, "rules.ini"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRuleSet_All_Nil(t *testing.T) {
	var rs *RuleSet
	assert.Nil(t, rs.All())
}

func TestDecodeData(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   map[string]any
	}{
		{
			name:   "yaml",
			data:   "title: Hi\nitems:\n  - x: 1\n",
			format: FormatYAML,
			want:   map[string]any{"title": "Hi", "items": []any{map[string]any{"x": 1}}},
		},
		{
			name:   "toml",
			data:   "title = \"Hi\"\n[[items]]\nx = 1\n",
			format: FormatTOML,
			want:   map[string]any{"title": "Hi", "items": []map[string]any{{"x": int64(1)}}},
		},
		{
			name:   "json",
			data:   `{"title": "Hi", "n": 2}`,
			format: FormatJSON,
			want:   map[string]any{"title": "Hi", "n": float64(2)},
		},
		{"empty yaml", "", FormatYAML, map[string]any{}},
		{"empty json", "  ", FormatJSON, map[string]any{}},
		{"json null", "null", FormatJSON, map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeData([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeData_RendersNumbers(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var doc string
			switch format {
			case FormatYAML:
				doc = "n: 2\nf: 1.5"
			case FormatTOML:
				doc = "n = 2\nf = 1.5"
			case FormatJSON:
				doc = `{"n": 2, "f": 1.5}`
			}
			data, err := DecodeData([]byte(doc), format)
			require.NoError(t, err)

			tmpl, err := template.Parse("doc", "{n} {f}")
			require.NoError(t, err)
			got, err := tmpl.Render(nil, data)
			require.NoError(t, err)
			assert.Equal(t, "2 1.5", got)
		})
	}
}

func TestDecodeData_Errors(t *testing.T) {
	_, err := DecodeData([]byte("- a\n- b\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = DecodeData([]byte(`[1]`), FormatJSON)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = DecodeData([]byte(`x = `), FormatTOML)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestLoadData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yml")
	require.NoError(t, os.WriteFile(path, []byte("b: 1\na: 2\n"), 0o644))

	data, err := LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Keys(data))
}

func TestFormatOf(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.toml": FormatTOML,
		"a.json": FormatJSON,
	} {
		got, err := FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatOf("a.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSchema(t *testing.T) {
	raw, err := SchemaJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, SchemaID, doc["$id"])
	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has top-level properties")
	assert.Contains(t, props, "rules")
	assert.Contains(t, props, "include_each")
	assert.Contains(t, props, "include_import")
	assert.Contains(t, props, "include_helpers")
	assert.Contains(t, string(raw), `"pattern"`)
}
