package domain

import "github.com/google/jsonschema-go/jsonschema"

// ToolDefinition is the listing view of one registered tool.
type ToolDefinition struct {
	ID           string
	Name         string
	Title        string
	Description  string
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema
	Destructive  bool
	ReadOnly     bool
}
