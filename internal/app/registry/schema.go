package registry

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"raindropmcp/internal/domain"
)

// Schema is a structural argument schema used both to validate input and to
// describe it in tools/list.
type Schema struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// SchemaFor infers a schema from T. Fields without omitempty are required.
func SchemaFor[T any](customize ...func(*jsonschema.Schema)) (*Schema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	for _, fn := range customize {
		fn(schema)
	}
	return NewSchema(schema)
}

// MustSchemaFor is SchemaFor for package-level tool tables.
func MustSchemaFor[T any](customize ...func(*jsonschema.Schema)) *Schema {
	schema, err := SchemaFor[T](customize...)
	if err != nil {
		panic(err)
	}
	return schema
}

func NewSchema(schema *jsonschema.Schema) (*Schema, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Schema{schema: schema, resolved: resolved}, nil
}

// Validate checks input after normalizing it through JSON so Go values and
// decoded wire values are treated alike.
func (s *Schema) Validate(input any) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return domain.E(domain.CodeInvalidArgument, "validate", "arguments are not valid JSON", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return domain.E(domain.CodeInvalidArgument, "validate", "arguments are not valid JSON", err)
	}
	if err := s.resolved.Validate(instance); err != nil {
		return domain.E(domain.CodeInvalidArgument, "validate", err.Error(), err)
	}
	return nil
}

// Describe returns the JSON schema. Callers must not mutate it.
func (s *Schema) Describe() *jsonschema.Schema {
	if s == nil {
		return nil
	}
	return s.schema
}

// enum restricts a top-level property to the given values.
func enum(property string, values ...string) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		prop, ok := s.Properties[property]
		if !ok {
			return
		}
		prop.Enum = make([]any, len(values))
		for i, v := range values {
			prop.Enum[i] = v
		}
	}
}

// minimum sets an inclusive lower bound on a numeric property.
func minimum(property string, value float64) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		if prop, ok := s.Properties[property]; ok {
			prop.Minimum = &value
		}
	}
}

// maximum sets an inclusive upper bound on a numeric property.
func maximum(property string, value float64) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		if prop, ok := s.Properties[property]; ok {
			prop.Maximum = &value
		}
	}
}
