package mcpcodec

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"raindropmcp/internal/domain"
)

// ToolToMCP converts a tool definition to its MCP listing shape.
func ToolToMCP(def domain.ToolDefinition) *mcp.Tool {
	destructive := def.Destructive
	openWorld := true
	tool := &mcp.Tool{
		Name:        def.Name,
		Title:       def.Title,
		Description: def.Description,
		Annotations: &mcp.ToolAnnotations{
			Title:           def.Title,
			ReadOnlyHint:    def.ReadOnly,
			DestructiveHint: &destructive,
			OpenWorldHint:   &openWorld,
		},
	}
	// A typed nil inside the interface would encode as null and fail the
	// server's object-schema check.
	if def.InputSchema != nil {
		tool.InputSchema = def.InputSchema
	}
	if def.OutputSchema != nil {
		tool.OutputSchema = def.OutputSchema
	}
	return tool
}

// ResourceToMCP converts a static descriptor. Templates go through ResourceTemplateToMCP.
func ResourceToMCP(desc domain.ResourceDescriptor) *mcp.Resource {
	return &mcp.Resource{
		URI:         desc.URI,
		Name:        desc.Name,
		Description: desc.Description,
		MIMEType:    desc.MIMEType,
	}
}

func ResourceTemplateToMCP(desc domain.ResourceDescriptor) *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		URITemplate: desc.URI,
		Name:        desc.Name,
		Description: desc.Description,
		MIMEType:    desc.MIMEType,
	}
}

// ContentToMCP converts one content item. Unknown implementations are rejected.
func ContentToMCP(content domain.Content) (mcp.Content, error) {
	switch c := content.(type) {
	case *domain.TextContent:
		if c == nil {
			return nil, fmt.Errorf("nil text content")
		}
		return &mcp.TextContent{Text: c.Text, Meta: metaToMCP(c.Meta)}, nil
	case *domain.ResourceLinkContent:
		if c == nil {
			return nil, fmt.Errorf("nil resource link content")
		}
		return &mcp.ResourceLink{
			URI:         c.URI,
			Name:        c.Name,
			Description: c.Description,
			MIMEType:    c.MIMEType,
			Meta:        metaToMCP(c.Meta),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported content type %T", content)
	}
}

// ToolResultToMCP converts a tool result, keeping content order.
func ToolResultToMCP(result *domain.ToolResult) (*mcp.CallToolResult, error) {
	if result == nil {
		return nil, fmt.Errorf("nil tool result")
	}
	out := &mcp.CallToolResult{
		Content: make([]mcp.Content, 0, len(result.Content)),
		IsError: result.IsError,
	}
	for i, item := range result.Content {
		converted, err := ContentToMCP(item)
		if err != nil {
			return nil, fmt.Errorf("content %d: %w", i, err)
		}
		out.Content = append(out.Content, converted)
	}
	if result.Structured != nil {
		out.StructuredContent = result.Structured
	}
	return out, nil
}

func ResourceResultToMCP(result *domain.ResourceResult) *mcp.ReadResourceResult {
	if result == nil {
		return &mcp.ReadResourceResult{}
	}
	out := &mcp.ReadResourceResult{
		Contents: make([]*mcp.ResourceContents, 0, len(result.Contents)),
	}
	for _, c := range result.Contents {
		out.Contents = append(out.Contents, &mcp.ResourceContents{
			URI:      c.URI,
			MIMEType: c.MIMEType,
			Text:     c.Text,
		})
	}
	return out
}

func metaToMCP(meta map[string]any) mcp.Meta {
	if len(meta) == 0 {
		return nil
	}
	out := make(mcp.Meta, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
