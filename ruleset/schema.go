package ruleset

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID identifies the rule-set schema.
const SchemaID = "https://github.com/randalmurphal/tinytemplate/ruleset.schema.json"

// Schema returns the JSON Schema describing rule-set files.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&RuleSet{})
	s.ID = SchemaID
	s.Title = "tinytemplate rule set"
	s.Description = "Ordered rewrite rules applied to a document before rendering."
	return s
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
