package mcpcodec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raindropmcp/internal/domain"
)

const toolDefinitionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["name", "inputSchema"],
  "properties": {
    "_meta": { "$ref": "#/$defs/meta" },
    "annotations": { "$ref": "#/$defs/toolAnnotations" },
    "description": { "type": "string" },
    "inputSchema": { "type": "object" },
    "name": { "type": "string" },
    "outputSchema": { "type": "object" },
    "title": { "type": "string" },
    "icons": { "type": "array", "items": { "$ref": "#/$defs/icon" } }
  },
  "additionalProperties": true,
  "$defs": {
    "meta": {
      "type": "object"
    },
    "toolAnnotations": {
      "type": "object",
      "properties": {
        "idempotentHint": { "type": "boolean" },
        "readOnlyHint": { "type": "boolean" },
        "destructiveHint": { "type": ["boolean", "null"] },
        "openWorldHint": { "type": ["boolean", "null"] },
        "title": { "type": "string" }
      },
      "additionalProperties": true
    },
    "icon": {
      "type": "object",
      "required": ["src"],
      "properties": {
        "src": { "type": "string" },
        "mimeType": { "type": "string" },
        "sizes": { "type": "array", "items": { "type": "string" } },
        "theme": { "type": "string" }
      },
      "additionalProperties": true
    }
  }
}`

const resourceDefinitionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["uri", "name"],
  "properties": {
    "_meta": { "$ref": "#/$defs/meta" },
    "annotations": { "$ref": "#/$defs/annotations" },
    "description": { "type": "string" },
    "mimeType": { "type": "string" },
    "name": { "type": "string" },
    "size": { "type": "integer" },
    "title": { "type": "string" },
    "uri": { "type": "string" },
    "icons": { "type": "array", "items": { "$ref": "#/$defs/icon" } }
  },
  "additionalProperties": true,
  "$defs": {
    "meta": {
      "type": "object"
    },
    "annotations": {
      "type": "object",
      "properties": {
        "audience": { "type": "array", "items": { "type": "string" } },
        "lastModified": { "type": "string" },
        "priority": { "type": "number" }
      },
      "additionalProperties": true
    },
    "icon": {
      "type": "object",
      "required": ["src"],
      "properties": {
        "src": { "type": "string" },
        "mimeType": { "type": "string" },
        "sizes": { "type": "array", "items": { "type": "string" } },
        "theme": { "type": "string" }
      },
      "additionalProperties": true
    }
  }
}`

func validateAgainstSchema(t *testing.T, schemaJSON string, payload []byte) {
	t.Helper()

	var schema jsonschema.Schema
	require.NoError(t, json.Unmarshal([]byte(schemaJSON), &schema))

	resolved, err := schema.Resolve(nil)
	require.NoError(t, err)

	var decoded any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.NoError(t, resolved.Validate(decoded))
}

func TestToolToMCP_MatchesProtocolShape(t *testing.T) {
	input := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"collectionId": {Type: "integer"},
		},
		Required: []string{"collectionId"},
	}
	tool := ToolToMCP(domain.ToolDefinition{
		ID:          "bulk_edit_raindrops",
		Name:        "bulk_edit_raindrops",
		Title:       "Bulk edit bookmarks",
		Description: "Apply one change to many bookmarks",
		InputSchema: input,
		Destructive: true,
	})

	raw, err := json.Marshal(tool)
	require.NoError(t, err)
	validateAgainstSchema(t, toolDefinitionSchema, raw)

	require.NotNil(t, tool.Annotations)
	require.NotNil(t, tool.Annotations.DestructiveHint)
	assert.True(t, *tool.Annotations.DestructiveHint)
	assert.False(t, tool.Annotations.ReadOnlyHint)
	assert.Nil(t, tool.OutputSchema)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "outputSchema")
	schema, ok := decoded["inputSchema"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
}

func TestToolToMCP_KeepsOutputSchema(t *testing.T) {
	output := &jsonschema.Schema{Type: "object"}
	tool := ToolToMCP(domain.ToolDefinition{
		Name:         "diagnostics",
		Description:  "Server diagnostics",
		InputSchema:  &jsonschema.Schema{Type: "object"},
		OutputSchema: output,
		ReadOnly:     true,
	})

	assert.Same(t, output, tool.OutputSchema)
	assert.True(t, tool.Annotations.ReadOnlyHint)
	assert.False(t, *tool.Annotations.DestructiveHint)
}

func TestResourceToMCP_MatchesProtocolShape(t *testing.T) {
	resource := ResourceToMCP(domain.ResourceDescriptor{
		URI:         domain.DiagnosticsURI,
		Name:        "diagnostics",
		Description: "Server diagnostics",
		MIMEType:    domain.MIMETypeJSON,
	})

	raw, err := json.Marshal(resource)
	require.NoError(t, err)
	validateAgainstSchema(t, resourceDefinitionSchema, raw)
	assert.Equal(t, domain.DiagnosticsURI, resource.URI)
}

func TestResourceTemplateToMCP(t *testing.T) {
	tmpl := ResourceTemplateToMCP(domain.ResourceDescriptor{
		URI:      "mcp://collection/{id}",
		Name:     "collection",
		MIMEType: domain.MIMETypeJSON,
		Template: true,
	})

	assert.Equal(t, "mcp://collection/{id}", tmpl.URITemplate)
	assert.Equal(t, "collection", tmpl.Name)
	assert.Equal(t, domain.MIMETypeJSON, tmpl.MIMEType)
}

func TestToolResultToMCP_PreservesOrderAndKinds(t *testing.T) {
	result := &domain.ToolResult{
		Content: []domain.Content{
			domain.Text("Found 1 bookmark"),
			&domain.ResourceLinkContent{
				URI:         domain.RaindropURI(42),
				Name:        "Example",
				Description: "https://example.com",
				MIMEType:    domain.MIMETypeJSON,
				Meta:        map[string]any{"id": int64(42)},
			},
		},
		Structured: map[string]any{"count": 1},
	}

	out, err := ToolResultToMCP(result)
	require.NoError(t, err)
	require.Len(t, out.Content, 2)
	assert.False(t, out.IsError)

	text, ok := out.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Found 1 bookmark", text.Text)
	assert.Nil(t, text.Meta)

	link, ok := out.Content[1].(*mcp.ResourceLink)
	require.True(t, ok)
	assert.Equal(t, "mcp://raindrop/42", link.URI)
	assert.Equal(t, "Example", link.Name)
	if diff := cmp.Diff(mcp.Meta{"id": int64(42)}, link.Meta); diff != "" {
		t.Fatalf("link meta mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[string]any{"count": 1}, out.StructuredContent)
}

func TestToolResultToMCP_CarriesErrorFlag(t *testing.T) {
	out, err := ToolResultToMCP(&domain.ToolResult{
		Content: []domain.Content{domain.Text("Bulk edit failed: boom")},
		IsError: true,
	})
	require.NoError(t, err)
	assert.True(t, out.IsError)
	assert.Nil(t, out.StructuredContent)
}

type foreignContent struct{ domain.Content }

func TestToolResultToMCP_RejectsUnknownContent(t *testing.T) {
	_, err := ToolResultToMCP(&domain.ToolResult{
		Content: []domain.Content{domain.Text("ok"), foreignContent{}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content 1")

	_, err = ToolResultToMCP(nil)
	require.Error(t, err)
}

func TestResourceResultToMCP(t *testing.T) {
	out := ResourceResultToMCP(&domain.ResourceResult{
		Contents: []domain.ResourceContents{{
			URI:      domain.CollectionURI(7),
			MIMEType: domain.MIMETypeJSON,
			Text:     `{"_id":7}`,
		}},
	})
	require.Len(t, out.Contents, 1)
	assert.Equal(t, "mcp://collection/7", out.Contents[0].URI)
	assert.Equal(t, domain.MIMETypeJSON, out.Contents[0].MIMEType)
	assert.JSONEq(t, `{"_id":7}`, out.Contents[0].Text)

	assert.Empty(t, ResourceResultToMCP(nil).Contents)
}
