package event

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema guards the client_payload shape before the pipeline
// commits to any side effects. It is deliberately loose about section
// contents; those degrade field by field downstream.
const payloadSchema = `{
	"type": "object",
	"properties": {
		"timestamp":  {"type": "string"},
		"form_title": {"type": "string"},
		"status":     {"type": "string"},
		"fields":     {"type": "object"},
		"sections": {
			"type": "array",
			"items": {"type": "object"}
		},
		"email_to": {"type": ["string", "array"]}
	},
	"additionalProperties": true
}`

func validatePayload(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(payloadSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("invalid client_payload: %s", strings.Join(msgs, "; "))
	}

	return nil
}
