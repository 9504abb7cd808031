package hierarchy

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// Schema reflects the JSON schema of the exported database.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:            true,
		Anonymous:                 true,
		AllowAdditionalProperties: true,
	}

	schema := reflector.Reflect(&Database{})
	schema.Title = "ReactiveFunctionDatabase"
	schema.Description = "Database of reactive functions organized in a three-level hierarchy"

	if def, ok := schema.Definitions["ReactiveFunction"]; ok {
		def.Title = "ReactiveFunction"
		def.Description = "Reactive functional group with its hierarchical classification and SMARTS pattern"

		// Decoding takes the pattern from "smarts" or its "pattern" alias.
		def.Properties.Set("pattern", &jsonschema.Schema{
			Type:        "string",
			Title:       "Pattern",
			Description: "Alias of smarts accepted on input",
			Deprecated:  true,
		})
		def.Required = slices.DeleteFunc(def.Required, func(field string) bool { return field == "smarts" })
		def.AnyOf = []*jsonschema.Schema{
			{Required: []string{"smarts"}},
			{Required: []string{"pattern"}},
		}
	}

	return schema
}

// SchemaJSON returns Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return b, nil
}
