package validation

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidator checks inbound payloads against JSON schemas before the
// binding layer touches them. Schemas are compiled once at construction.
type SchemaValidator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewSchemaValidator() (*SchemaValidator, error) {
	sources := map[string]string{
		"product":     productSchema,
		"user":        userSchema,
		"interaction": interactionSchema,
	}

	validator := &SchemaValidator{schemas: make(map[string]*gojsonschema.Schema, len(sources))}
	for name, source := range sources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		validator.schemas[name] = schema
	}

	return validator, nil
}

func (sv *SchemaValidator) ValidateProduct(data interface{}) *Result {
	return sv.validate("product", data)
}

func (sv *SchemaValidator) ValidateUser(data interface{}) *Result {
	return sv.validate("user", data)
}

func (sv *SchemaValidator) ValidateInteraction(data interface{}) *Result {
	return sv.validate("interaction", data)
}

func (sv *SchemaValidator) validate(name string, data interface{}) *Result {
	schema, exists := sv.schemas[name]
	if !exists {
		return &Result{Valid: false, Errors: []FieldError{{
			Field:   "schema",
			Message: fmt.Sprintf("Schema '%s' not found", name),
		}}}
	}

	var documentLoader gojsonschema.JSONLoader
	switch v := data.(type) {
	case string:
		documentLoader = gojsonschema.NewStringLoader(v)
	case []byte:
		documentLoader = gojsonschema.NewBytesLoader(v)
	default:
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return &Result{Valid: false, Errors: []FieldError{{
				Field:   "data",
				Message: fmt.Sprintf("Failed to marshal data to JSON: %v", err),
			}}}
		}
		documentLoader = gojsonschema.NewBytesLoader(jsonBytes)
	}

	result, err := schema.Validate(documentLoader)
	if err != nil {
		return &Result{Valid: false, Errors: []FieldError{{
			Field:   "document",
			Message: err.Error(),
		}}}
	}

	out := &Result{Valid: result.Valid(), Errors: []FieldError{}}
	for _, verr := range result.Errors() {
		out.Errors = append(out.Errors, FieldError{
			Field:   verr.Field(),
			Message: verr.Description(),
		})
	}

	return out
}

type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const productSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "category", "price"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 500},
		"description": {"type": "string", "maxLength": 5000},
		"category": {"type": "string", "minLength": 1, "maxLength": 200},
		"price": {"type": "number", "minimum": 0},
		"brand": {"type": ["string", "null"], "maxLength": 200},
		"attributes": {
			"type": "object",
			"additionalProperties": {"type": ["string", "number", "boolean"]}
		},
		"image_url": {"type": ["string", "null"], "maxLength": 2000},
		"stock": {"type": "integer", "minimum": 0},
		"rating": {"type": "number", "minimum": 0, "maximum": 5}
	}
}`

const userSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name": {"type": "string", "minLength": 1, "maxLength": 200},
		"email": {"type": "string", "format": "email", "maxLength": 320},
		"preferences": {"type": "object"}
	}
}`

const interactionSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["user_id", "product_id", "kind"],
	"properties": {
		"user_id": {"type": "string", "format": "uuid"},
		"product_id": {"type": "string", "format": "uuid"},
		"kind": {"type": "string", "enum": ["view", "click", "cart", "purchase", "rating"]},
		"duration": {"type": ["integer", "null"], "minimum": 0},
		"rating": {"type": ["number", "null"], "minimum": 1, "maximum": 5},
		"context": {"type": "object"}
	}
}`
