package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema produces the JSON schema of the config file format.
// Runtime-only fields carry `json:"-"` and never appear in the output.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: false,
	}
	schema := r.Reflect(&Config{})
	schema.Title = "agentlint configuration"
	schema.Description = "Schema for agentlint.toml (expressed as JSON)"
	return json.MarshalIndent(schema, "", "  ")
}
