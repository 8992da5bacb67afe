package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"raindropmcp/internal/domain"
)

// ToolContext is bound into every handler call by the dispatcher.
type ToolContext struct {
	API         domain.RaindropAPI
	Logger      *zap.Logger
	Diagnostics domain.DiagnosticsProvider
	// Extras carries transport-supplied values such as the session id.
	Extras map[string]any
}

func (tc ToolContext) logger() *zap.Logger {
	if tc.Logger == nil {
		return zap.NewNop()
	}
	return tc.Logger
}

// Handler runs one tool with arguments that already passed InputSchema.
type Handler func(ctx context.Context, args map[string]any, tc ToolContext) (*domain.ToolResult, error)

// ToolDescriptor is the immutable record for one registered tool.
type ToolDescriptor struct {
	Name         string
	Title        string
	Description  string
	InputSchema  *Schema
	OutputSchema *Schema
	// Destructive marks tools whose operations may delete or overwrite data.
	Destructive bool
	ReadOnly    bool
	Handler     Handler
}

// ID is the lookup key used by call tool. It equals Name.
func (d ToolDescriptor) ID() string {
	return d.Name
}

// Registry is the ordered, fixed set of tools. It is not mutated after construction.
type Registry struct {
	tools []ToolDescriptor
	index map[string]int
}

func NewRegistry(tools ...ToolDescriptor) (*Registry, error) {
	r := &Registry{
		tools: make([]ToolDescriptor, 0, len(tools)),
		index: make(map[string]int, len(tools)),
	}
	for i, tool := range tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("tool %d: name is required", i)
		}
		if tool.Handler == nil {
			return nil, fmt.Errorf("tool %q: handler is required", tool.Name)
		}
		if tool.InputSchema == nil {
			return nil, fmt.Errorf("tool %q: input schema is required", tool.Name)
		}
		if _, exists := r.index[tool.Name]; exists {
			return nil, fmt.Errorf("tool %q: duplicate name", tool.Name)
		}
		r.index[tool.Name] = len(r.tools)
		r.tools = append(r.tools, tool)
	}
	return r, nil
}

// NewDefaultRegistry returns the Raindrop tool set.
func NewDefaultRegistry() (*Registry, error) {
	return NewRegistry(DefaultTools()...)
}

func (r *Registry) Lookup(name string) (ToolDescriptor, bool) {
	if r == nil {
		return ToolDescriptor{}, false
	}
	i, ok := r.index[name]
	if !ok {
		return ToolDescriptor{}, false
	}
	return r.tools[i], true
}

// Tools returns the descriptors in registration order.
func (r *Registry) Tools() []ToolDescriptor {
	if r == nil {
		return nil
	}
	out := make([]ToolDescriptor, len(r.tools))
	copy(out, r.tools)
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tools)
}

// DefaultTools lists every Raindrop tool in advertised order.
func DefaultTools() []ToolDescriptor {
	return []ToolDescriptor{
		diagnosticsTool(),
		collectionListTool(),
		collectionManageTool(),
		bookmarkSearchTool(),
		bookmarkManageTool(),
		getRaindropTool(),
		listRaindropsTool(),
		bulkEditTool(),
		tagListTool(),
		tagManageTool(),
		highlightListTool(),
		highlightManageTool(),
	}
}
