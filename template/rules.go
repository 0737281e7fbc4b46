package template

// Names of the rules Render always appends after the caller's rules.
const (
	RuleEscapeVar = "escape_var"
	RuleVariable  = "variable"
)

// BuiltinRules returns the two rules appended to every render, in order:
// {escape:name} becomes an escaped lookup and {name} a plain one.
// They run after caller rules, so markers produced by caller rules are
// still substituted.
func BuiltinRules() []Rule {
	return []Rule{
		{Name: RuleEscapeVar, Pattern: `\{escape:(\w+)\}`, Replacement: "{% escape ${1} %}"},
		{Name: RuleVariable, Pattern: `\{(\w+)\}`, Replacement: "{% var ${1} %}"},
	}
}

// EachRules returns rules for loop markers:
//
//	{#each items}...{/each}
//	{#each items as item}...{/each}
//
// The first form merges each element's keys into scope, the second binds
// the element to a single name.
func EachRules() []Rule {
	return []Rule{
		{Name: "each_as", Pattern: `\{#each\s+(\w+)\s+as\s+(\w+)\}`, Replacement: "{% each ${1} as ${2} %}"},
		{Name: "each", Pattern: `\{#each\s+(\w+)\}`, Replacement: "{% each ${1} %}"},
		{Name: "end_each", Pattern: `\{/each\}`, Replacement: "{% end %}"},
	}
}

// ImportRule returns a rule for {import:name} and {importFile('name')}.
func ImportRule() Rule {
	return Rule{
		Name:        "import",
		Pattern:     `\{import(?::([\w./-]+)|File\('([^'"]+)'\))\}`,
		Replacement: `{% import "${1}${2}" %}`,
	}
}

// HelperRule returns a rule for {name|helper args...}, e.g.
// {description|truncate 20} or {title|replace "a" "b"}.
func HelperRule() Rule {
	return Rule{
		Name:        "helper",
		Pattern:     `\{(\w+)\|(\w+)((?:\s+(?:"[^"]*"|[^{}\s"]+))*)\}`,
		Replacement: "{% call ${2} ${1}${3} %}",
	}
}
