package server

import (
	"encoding/json"

	"raindropmcp/internal/domain"
)

type Info struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Description string `json:"description" yaml:"description"`
}

type ListChanged struct {
	ListChanged bool `json:"listChanged" yaml:"listChanged"`
}

type ResourceCapability struct {
	ListChanged bool `json:"listChanged" yaml:"listChanged"`
	Subscribe   bool `json:"subscribe" yaml:"subscribe"`
}

type Confirmation struct {
	DestructiveOperations bool     `json:"destructiveOperations" yaml:"destructiveOperations"`
	Tools                 []string `json:"tools" yaml:"tools"`
}

// Capabilities are advertised only; the facade does not enforce them.
type Capabilities struct {
	Tools        ListChanged        `json:"tools" yaml:"tools"`
	Resources    ResourceCapability `json:"resources" yaml:"resources"`
	Pagination   bool               `json:"pagination" yaml:"pagination"`
	Sampling     bool               `json:"sampling" yaml:"sampling"`
	Confirmation Confirmation       `json:"confirmation" yaml:"confirmation"`
}

type ManifestTool struct {
	Name         string         `json:"name" yaml:"name"`
	Title        string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string         `json:"description" yaml:"description"`
	Destructive  bool           `json:"destructive,omitempty" yaml:"destructive,omitempty"`
	ReadOnly     bool           `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	InputSchema  map[string]any `json:"inputSchema" yaml:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema,omitempty" yaml:"outputSchema,omitempty"`
}

type ManifestResource struct {
	URI         string `json:"uri" yaml:"uri"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Template    bool   `json:"template,omitempty" yaml:"template,omitempty"`
}

type Manifest struct {
	Name            string             `json:"name" yaml:"name"`
	Version         string             `json:"version" yaml:"version"`
	Description     string             `json:"description" yaml:"description"`
	ProtocolVersion string             `json:"protocolVersion" yaml:"protocolVersion"`
	Capabilities    Capabilities       `json:"capabilities" yaml:"capabilities"`
	Tools           []ManifestTool     `json:"tools" yaml:"tools"`
	Resources       []ManifestResource `json:"resources" yaml:"resources"`
}

// schemaMap flattens a schema into plain maps so YAML output matches JSON.
func schemaMap(schema any) map[string]any {
	if schema == nil {
		return nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func manifestResource(d domain.ResourceDescriptor) ManifestResource {
	return ManifestResource{
		URI:         d.URI,
		Name:        d.Name,
		Description: d.Description,
		MIMEType:    d.MIMEType,
		Template:    d.Template,
	}
}
