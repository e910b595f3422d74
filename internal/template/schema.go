// internal/template/schema.go
package template

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema is the structural contract for template definitions coming
// in through the admin boundary, checked before the placeholder-level
// validation runs.
const definitionSchema = `{
	"type": "object",
	"required": ["name", "channels"],
	"additionalProperties": false,
	"properties": {
		"name": {
			"type": "string",
			"minLength": 1,
			"pattern": "^[a-z0-9_]+$"
		},
		"category": {
			"type": "string"
		},
		"active": {
			"type": "boolean"
		},
		"variables": {
			"type": "array",
			"items": { "type": "string" }
		},
		"channels": {
			"type": "object",
			"minProperties": 1,
			"patternProperties": {
				"^(email|sms|whatsapp|push|in_app)$": {
					"type": "object",
					"additionalProperties": false,
					"properties": {
						"message":  { "type": "string" },
						"template": { "type": "string" },
						"subject":  { "type": "string" },
						"title":    { "type": "string" },
						"body":     { "type": "string" },
						"html":     { "type": "string" },
						"text":     { "type": "string" }
					}
				}
			},
			"additionalProperties": false
		}
	}
}`

var definitionSchemaLoader = gojsonschema.NewStringLoader(definitionSchema)

// ValidateDefinition checks a raw template definition document against the
// structural schema. Schema violations are returned in the result, not as an
// error; the error return is reserved for the validator itself failing.
func ValidateDefinition(doc map[string]interface{}) (*ValidationResult, error) {
	res, err := gojsonschema.Validate(definitionSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate template definition: %w", err)
	}

	out := &ValidationResult{IsValid: res.Valid()}
	for _, desc := range res.Errors() {
		out.Errors = append(out.Errors, desc.String())
	}
	return out, nil
}
