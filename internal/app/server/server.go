package server

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"raindropmcp/internal/app/dispatch"
	"raindropmcp/internal/app/registry"
	"raindropmcp/internal/app/resources"
	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/telemetry"
)

type Options struct {
	Info      Info
	Build     string
	Transport string
	API       domain.RaindropAPI
	Registry  *registry.Registry
	Metrics   domain.Metrics
	Logger    *zap.Logger
	// Environment returns the effective configuration with secrets redacted.
	Environment func() map[string]any
	Now         func() time.Time
}

// ToolInfo is the listing view of one descriptor.
type ToolInfo = domain.ToolDefinition

// Server composes the registry, dispatcher and resolver into the operations
// a protocol host exposes.
type Server struct {
	info       Info
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	resolver   *resources.Resolver
	runtime    *Runtime
	api        domain.RaindropAPI
	logger     *zap.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	info := opts.Info
	if info.Name == "" {
		info.Name = domain.DefaultServerName
	}
	if info.Description == "" {
		info.Description = domain.DefaultServerDescription
	}

	patterns := resources.DefaultPatterns()
	rt := &Runtime{
		info:        info,
		build:       opts.Build,
		transport:   opts.Transport,
		startedAt:   now(),
		now:         now,
		toolCount:   opts.Registry.Len(),
		environment: opts.Environment,
	}

	static, err := staticEntries(rt, patterns)
	if err != nil {
		return nil, err
	}

	s := &Server{
		info:     info,
		registry: opts.Registry,
		runtime:  rt,
		api:      opts.API,
		logger:   logger.Named("server"),
	}
	s.resolver = resources.NewResolver(resources.Options{
		API:      opts.API,
		Patterns: patterns,
		Static:   static,
		Metrics:  opts.Metrics,
		Logger:   logger,
	})
	s.dispatcher = dispatch.New(dispatch.Options{
		API:         opts.API,
		Diagnostics: rt,
		Metrics:     opts.Metrics,
		Logger:      logger,
	})
	return s, nil
}

// staticEntries builds the pre-registered resources. The diagnostics entry is
// the snapshot taken now; later reads return it unchanged.
func staticEntries(rt *Runtime, patterns []resources.Pattern) ([]resources.StaticEntry, error) {
	diagnosticsDesc := domain.ResourceDescriptor{
		URI:         domain.DiagnosticsURI,
		Name:        "diagnostics",
		Description: "Server diagnostics captured at startup",
		MIMEType:    domain.MIMETypeJSON,
	}
	profileDesc := domain.ResourceDescriptor{
		URI:         domain.UserProfileURI,
		Name:        "user-profile",
		Description: "Authenticated Raindrop user, fetched live on read",
		MIMEType:    domain.MIMETypeJSON,
	}

	uris := map[string]struct{}{diagnosticsDesc.URI: {}, profileDesc.URI: {}}
	for _, p := range patterns {
		uris[p.Template.URI] = struct{}{}
	}
	rt.resourceCount = len(uris)

	diagnostics, err := resources.NewStaticEntry(diagnosticsDesc, rt.Snapshot(false))
	if err != nil {
		return nil, err
	}
	profile, err := resources.NewStaticEntry(profileDesc, map[string]any{"uri": domain.UserProfileURI, "live": true})
	if err != nil {
		return nil, err
	}
	return []resources.StaticEntry{diagnostics, profile}, nil
}

// ListTools returns every descriptor with a non-empty description.
func (s *Server) ListTools() []ToolInfo {
	tools := s.registry.Tools()
	out := make([]ToolInfo, 0, len(tools))
	for _, tool := range tools {
		if tool.Description == "" {
			continue
		}
		out = append(out, ToolInfo{
			ID:           tool.ID(),
			Name:         tool.Name,
			Title:        tool.Title,
			Description:  tool.Description,
			InputSchema:  tool.InputSchema.Describe(),
			OutputSchema: tool.OutputSchema.Describe(),
			Destructive:  tool.Destructive,
			ReadOnly:     tool.ReadOnly,
		})
	}
	return out
}

// CallTool validates input against the tool's schema and dispatches it.
// A nil input is treated as an empty argument object.
func (s *Server) CallTool(ctx context.Context, id string, input map[string]any, extras map[string]any) (*domain.ToolResult, error) {
	tool, ok := s.registry.Lookup(id)
	if !ok {
		return nil, domain.ToolNotFound(id)
	}
	if input == nil {
		input = map[string]any{}
	}
	if err := tool.InputSchema.Validate(input); err != nil {
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return nil, (&domain.Error{
				Code:    domainErr.Code,
				Op:      "tool " + id,
				Message: "invalid arguments: " + domainErr.Message,
				Cause:   err,
			}).WithMeta("tool", id)
		}
		return nil, err
	}
	return s.dispatcher.Dispatch(ctx, tool, input, extras)
}

// ListResources merges static resources with the dynamic URI patterns.
func (s *Server) ListResources() []domain.ResourceDescriptor {
	return s.resolver.List()
}

func (s *Server) ReadResource(ctx context.Context, uri string) (*domain.ResourceResult, error) {
	return s.resolver.Read(ctx, uri)
}

// HealthCheck reports liveness. With probe set it also round-trips the
// collaborator and reports degraded on failure.
func (s *Server) HealthCheck(ctx context.Context, probe bool) telemetry.HealthReport {
	report := telemetry.HealthReport{
		Status:        "ok",
		Version:       s.info.Version,
		UptimeSeconds: s.runtime.Uptime().Seconds(),
	}
	if !probe {
		return report
	}
	report.Probed = true
	if s.api == nil {
		report.Status = "degraded"
		report.Error = "collaborator not configured"
		return report
	}
	if _, err := s.api.GetUser(ctx); err != nil {
		s.logger.Warn("health probe failed", zap.Error(err))
		report.Status = "degraded"
		report.Error = err.Error()
	}
	return report
}

func (s *Server) Info() Info {
	return s.info
}

func (s *Server) Runtime() *Runtime {
	return s.runtime
}

func (s *Server) Manifest() Manifest {
	tools := s.ListTools()
	manifestTools := make([]ManifestTool, 0, len(tools))
	destructive := make([]string, 0, len(tools))
	for _, tool := range tools {
		manifestTools = append(manifestTools, ManifestTool{
			Name:         tool.Name,
			Title:        tool.Title,
			Description:  tool.Description,
			Destructive:  tool.Destructive,
			ReadOnly:     tool.ReadOnly,
			InputSchema:  schemaMap(tool.InputSchema),
			OutputSchema: schemaMap(tool.OutputSchema),
		})
		if tool.Destructive {
			destructive = append(destructive, tool.Name)
		}
	}

	descriptors := s.ListResources()
	manifestResources := make([]ManifestResource, 0, len(descriptors))
	for _, d := range descriptors {
		manifestResources = append(manifestResources, manifestResource(d))
	}

	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		Description:     s.info.Description,
		ProtocolVersion: domain.DefaultProtocolVersion,
		Capabilities: Capabilities{
			Tools:      ListChanged{ListChanged: false},
			Resources:  ResourceCapability{ListChanged: false, Subscribe: false},
			Pagination: true,
			Sampling:   false,
			Confirmation: Confirmation{
				DestructiveOperations: true,
				Tools:                 destructive,
			},
		},
		Tools:     manifestTools,
		Resources: manifestResources,
	}
}
