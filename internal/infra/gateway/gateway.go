package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/mcpcodec"
	"raindropmcp/internal/infra/telemetry"
)

// Core is the protocol-independent surface published over MCP.
type Core interface {
	ListTools() []domain.ToolDefinition
	CallTool(ctx context.Context, id string, input map[string]any, extras map[string]any) (*domain.ToolResult, error)
	ListResources() []domain.ResourceDescriptor
	ReadResource(ctx context.Context, uri string) (*domain.ResourceResult, error)
	HealthCheck(ctx context.Context, probe bool) telemetry.HealthReport
}

type Options struct {
	Name         string
	Version      string
	Instructions string
	Logger       *zap.Logger
}

type Gateway struct {
	core      Core
	opts      Options
	logger    *zap.Logger
	buildOnce sync.Once
	server    *mcp.Server
	tools     *toolRegistry
	resources *resourceRegistry
}

func NewGateway(core Core, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = domain.DefaultServerName
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Gateway{
		core:   core,
		opts:   opts,
		logger: logger.Named("gateway"),
	}
}

// Server returns the MCP server, registering every tool and resource on first use.
func (g *Gateway) Server() *mcp.Server {
	g.buildOnce.Do(func() {
		g.server = mcp.NewServer(&mcp.Implementation{
			Name:    g.opts.Name,
			Version: g.opts.Version,
		}, &mcp.ServerOptions{
			Instructions: g.opts.Instructions,
			HasTools:     true,
			HasResources: true,
		})
		g.tools = newToolRegistry(g.server, g.toolHandler, g.logger)
		g.resources = newResourceRegistry(g.server, g.resourceHandler, g.logger)

		toolCount := g.tools.Apply(g.core.ListTools())
		static, templates := g.resources.Apply(g.core.ListResources())
		g.logger.Info("mcp server ready",
			zap.Int("tools", toolCount),
			zap.Int("resources", static),
			zap.Int("resource_templates", templates),
		)
	})
	return g.server
}

// Run serves the protocol over stdin/stdout until ctx is canceled or the peer disconnects.
func (g *Gateway) Run(ctx context.Context) error {
	server := g.Server()
	g.logger.Info("gateway starting (stdio transport)")
	err := server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (g *Gateway) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, _ = telemetry.EnsureRequestMeta(ctx, "")
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := decodeArguments(name, raw)
		if err != nil {
			return nil, err
		}
		result, err := g.core.CallTool(ctx, name, args, sessionExtras(req))
		if err != nil {
			return nil, err
		}
		return mcpcodec.ToolResultToMCP(result)
	}
}

func (g *Gateway) resourceHandler(uri string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		ctx, _ = telemetry.EnsureRequestMeta(ctx, "")
		targetURI := uri
		if req != nil && req.Params != nil && req.Params.URI != "" {
			targetURI = req.Params.URI
		}
		result, err := g.core.ReadResource(ctx, targetURI)
		if err != nil {
			if errors.Is(err, domain.ErrResourceNotFound) {
				return nil, mcp.ResourceNotFoundError(targetURI)
			}
			return nil, err
		}
		return mcpcodec.ResourceResultToMCP(result), nil
	}
}

// decodeArguments parses the raw argument object. Absent or null arguments
// become an empty map.
func decodeArguments(tool string, raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "tool "+tool, "arguments must be a JSON object", err).
			WithMeta("tool", tool)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func sessionExtras(req *mcp.CallToolRequest) map[string]any {
	if req == nil || req.Session == nil {
		return nil
	}
	id := req.Session.ID()
	if id == "" {
		return nil
	}
	return map[string]any{"sessionId": id}
}
