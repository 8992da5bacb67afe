package gateway

import (
	"net/url"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/mcpcodec"
)

type resourceRegistry struct {
	server     *mcp.Server
	handler    func(uri string) mcp.ResourceHandler
	logger     *zap.Logger
	mu         sync.Mutex
	registered map[string]struct{}
	templates  map[string]struct{}
}

func newResourceRegistry(server *mcp.Server, handler func(uri string) mcp.ResourceHandler, logger *zap.Logger) *resourceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resourceRegistry{
		server:     server,
		handler:    handler,
		logger:     logger.Named("resource_registry"),
		registered: make(map[string]struct{}),
		templates:  make(map[string]struct{}),
	}
}

// Apply registers static resources and URI templates, dropping stale ones.
func (r *resourceRegistry) Apply(descs []domain.ResourceDescriptor) (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nextStatic := make(map[string]struct{})
	nextTemplates := make(map[string]struct{})
	for _, desc := range descs {
		if !validResourceURI(desc.URI) {
			r.logger.Warn("skip resource with invalid uri", zap.String("uri", desc.URI))
			continue
		}
		if desc.Template {
			if _, ok := nextTemplates[desc.URI]; ok {
				continue
			}
			r.server.AddResourceTemplate(mcpcodec.ResourceTemplateToMCP(desc), r.handler(desc.URI))
			nextTemplates[desc.URI] = struct{}{}
			continue
		}
		if _, ok := nextStatic[desc.URI]; ok {
			continue
		}
		r.server.AddResource(mcpcodec.ResourceToMCP(desc), r.handler(desc.URI))
		nextStatic[desc.URI] = struct{}{}
	}

	if remove := stale(r.registered, nextStatic); len(remove) > 0 {
		r.server.RemoveResources(remove...)
	}
	if remove := stale(r.templates, nextTemplates); len(remove) > 0 {
		r.server.RemoveResourceTemplates(remove...)
	}

	r.registered = nextStatic
	r.templates = nextTemplates
	return len(nextStatic), len(nextTemplates)
}

func stale(prev, next map[string]struct{}) []string {
	var out []string
	for key := range prev {
		if _, ok := next[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

func validResourceURI(raw string) bool {
	// Template placeholders are stripped before parsing.
	candidate := strings.NewReplacer("{", "", "}", "").Replace(raw)
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return parsed.Scheme != ""
}
