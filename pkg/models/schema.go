package models

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// definitionSchema is the shape a stored workflow definition document must
// have. Stores validate against it on load; invalid documents are treated
// as absent rather than fatal.
var definitionSchema = map[string]any{
	"type":     "object",
	"required": []string{"nodes"},
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "data"},
				"properties": map[string]any{
					"id": map[string]any{"type": "string", "minLength": 1},
					"data": map[string]any{
						"type":     "object",
						"required": []string{"label"},
						"properties": map[string]any{
							"label": map[string]any{"type": "string"},
							"kind":  map[string]any{"type": "string"},
						},
					},
				},
			},
		},
		"edges": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"source", "target"},
				"properties": map[string]any{
					"id":     map[string]any{"type": "string"},
					"source": map[string]any{"type": "string"},
					"target": map[string]any{"type": "string"},
				},
			},
		},
	},
}

// ValidateDefinitionDocument checks a raw definition document against the
// persisted-blob schema.
func ValidateDefinitionDocument(document []byte) error {
	schemaLoader := gojsonschema.NewGoLoader(definitionSchema)
	dataLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate definition document: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, validationErr := range result.Errors() {
			errs = append(errs, validationErr.String())
		}

		return fmt.Errorf("definition document schema validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
