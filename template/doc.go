// Package template renders text documents by rewriting markers with an
// ordered list of regular-expression rules and then executing the result.
//
// # Pipeline
//
// Render takes the caller's rules and appends two built-in rules:
//
//	escape_var  {escape:name}  ->  {% escape name %}
//	variable    {name}         ->  {% var name %}
//
// Every rule is applied to the whole document in order, each one working on
// the previous rule's output. Caller rules therefore run first and may emit
// {name} markers that the built-ins still pick up.
//
// The rewritten document is then executed top to bottom. Literal text is
// copied, and each {% ... %} fragment performs one operation:
//
//	{% var name %}              value of name, or {name} if it is missing
//	{% escape name %}           HTML-escaped value of name
//	{% each items %}...{% end %}          body once per element, element keys in scope
//	{% each items as item %}...{% end %}  body once per element, element bound to item
//	{% wrap name %} / {% unwrap %}        push / pop the variable mapping
//	{% import name %}           render another document inline
//	{% call helper name args %} apply a helper to the value of name
//
// Only rules create fragments. A "{%" written in the document itself is
// plain text, and a "%}" inside a double-quoted argument does not close a
// fragment.
//
// Output is buffered; a failed render returns no partial text.
//
// # Example
//
//	tmpl, err := template.Parse("greeting", "Hello, {escape:name}!")
//	result, err := tmpl.Render(nil, map[string]any{"name": "<World>"})
//	// result: "Hello, &lt;World&gt;!"
//
// # Rules
//
// A Rule's Pattern uses Go regexp syntax and its Replacement uses $1 or ${1}
// for capture groups. Rules are trusted input: a rule can emit any fragment.
// EachRules, ImportRule and HelperRule provide common marker syntaxes:
//
//	rules := append(template.EachRules(), template.ImportRule(), template.HelperRule())
//	// {#each items}{name}{/each}  {import:footer.txt}  {title|upper}
//
// # Built-in Helpers
//
//   - upper, lower, trim, escape
//   - truncate N - cut to N bytes with ellipsis
//   - indent N - prefix every line with N spaces
//   - wrap N - wrap at N columns on word boundaries
//   - replace OLD NEW - replace all occurrences
//   - default FALLBACK - FALLBACK when the value is missing or empty
//   - json - pretty-printed JSON
//
// Add helpers with WithFuncs.
package template
