package gateway

import (
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/mcpcodec"
)

type toolRegistry struct {
	server     *mcp.Server
	handler    func(name string) mcp.ToolHandler
	logger     *zap.Logger
	mu         sync.Mutex
	registered map[string]struct{}
}

func newToolRegistry(server *mcp.Server, handler func(name string) mcp.ToolHandler, logger *zap.Logger) *toolRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &toolRegistry{
		server:     server,
		handler:    handler,
		logger:     logger.Named("tool_registry"),
		registered: make(map[string]struct{}),
	}
}

// Apply registers defs on the server and removes tools no longer present.
func (r *toolRegistry) Apply(defs []domain.ToolDefinition) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			continue
		}
		if !isObjectSchema(def) {
			r.logger.Warn("skip tool with invalid input schema", zap.String("tool", def.Name))
			continue
		}
		if _, dup := next[def.Name]; dup {
			r.logger.Warn("skip duplicate tool", zap.String("tool", def.Name))
			continue
		}

		r.server.AddTool(mcpcodec.ToolToMCP(def), r.handler(def.Name))
		next[def.Name] = struct{}{}
	}

	var remove []string
	for name := range r.registered {
		if _, ok := next[name]; !ok {
			remove = append(remove, name)
		}
	}
	if len(remove) > 0 {
		r.server.RemoveTools(remove...)
	}

	r.registered = next
	return len(next)
}

func isObjectSchema(def domain.ToolDefinition) bool {
	if def.InputSchema == nil || def.InputSchema.Type != "object" {
		return false
	}
	return def.OutputSchema == nil || def.OutputSchema.Type == "object"
}
