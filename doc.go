// Package tinytemplate is a small text-templating engine built on ordered
// regular-expression rewrite rules.
//
// A document's markers are rewritten by a list of rules into fragments,
// and the rewritten document is then executed against a data mapping:
//
//   - template: rules, rendering, variable lookup, loop scopes, imports
//   - source: document loaders and a file watcher
//   - ruleset: rule sets and data mappings from YAML, TOML or JSON files
//   - cmd/tinytpl: command-line renderer
//
// # Quick Start
//
//	import "github.com/randalmurphal/tinytemplate/template"
//	tmpl, _ := template.Parse("hello", "Hello {name}")
//	result, _ := tmpl.Render(nil, map[string]any{"name": "World"})
//	// result: "Hello World"
//
// Loops and imports:
//
//	import "github.com/randalmurphal/tinytemplate/source"
//	tmpl, _ := template.New(source.Dir("templates"), "page.txt")
//	rules := append(template.EachRules(), template.ImportRule())
//	result, _ := tmpl.Render(rules, data)
//
// Rule files:
//
//	import "github.com/randalmurphal/tinytemplate/ruleset"
//	rs, _ := ruleset.Load("rules.yaml")
//	result, _ := tmpl.Render(rs.All(), data)
package tinytemplate
