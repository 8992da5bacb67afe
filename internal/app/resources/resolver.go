package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/telemetry"
)

const (
	KindCollection = "collection"
	KindRaindrop   = "raindrop"
	KindProfile    = "profile"
	KindStatic     = "static"
	KindUnknown    = "unknown"
)

// FetchFunc loads the live payload for a matched URI. id is zero for
// patterns that take no identifier.
type FetchFunc func(ctx context.Context, api domain.RaindropAPI, id int64) (any, error)

// Pattern is a dynamic resource rule: a URI prefix (or exact URI) paired with
// a fetch against the collaborator.
type Pattern struct {
	Kind   string
	Prefix string
	// Exact requires the whole URI to equal Prefix; no identifier is parsed.
	Exact    bool
	Template domain.ResourceDescriptor
	Fetch    FetchFunc
}

func (p Pattern) match(uri string) bool {
	if p.Exact {
		return uri == p.Prefix
	}
	return strings.HasPrefix(uri, p.Prefix)
}

// DefaultPatterns are checked in order; the first match wins.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Kind:   KindCollection,
			Prefix: domain.CollectionURIPrefix,
			Template: domain.ResourceDescriptor{
				URI:         domain.CollectionURIPrefix + "{id}",
				Name:        "collection",
				Description: "Raindrop collection details by numeric id",
				MIMEType:    domain.MIMETypeJSON,
				Template:    true,
			},
			Fetch: func(ctx context.Context, api domain.RaindropAPI, id int64) (any, error) {
				return api.GetCollection(ctx, id)
			},
		},
		{
			Kind:   KindRaindrop,
			Prefix: domain.RaindropURIPrefix,
			Template: domain.ResourceDescriptor{
				URI:         domain.RaindropURIPrefix + "{id}",
				Name:        "raindrop",
				Description: "Bookmark details by numeric id",
				MIMEType:    domain.MIMETypeJSON,
				Template:    true,
			},
			Fetch: func(ctx context.Context, api domain.RaindropAPI, id int64) (any, error) {
				return api.GetRaindrop(ctx, id)
			},
		},
		{
			Kind:   KindProfile,
			Prefix: domain.UserProfileURI,
			Exact:  true,
			Template: domain.ResourceDescriptor{
				URI:         domain.UserProfileURI,
				Name:        "user-profile",
				Description: "Authenticated Raindrop user",
				MIMEType:    domain.MIMETypeJSON,
			},
			Fetch: func(ctx context.Context, api domain.RaindropAPI, _ int64) (any, error) {
				return api.GetUser(ctx)
			},
		},
	}
}

// StaticEntry is a pre-built resource served without a collaborator call.
type StaticEntry struct {
	Descriptor domain.ResourceDescriptor
	Contents   []domain.ResourceContents
}

// NewStaticEntry serializes payload once into a single JSON contents item.
func NewStaticEntry(descriptor domain.ResourceDescriptor, payload any) (StaticEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return StaticEntry{}, fmt.Errorf("encode static resource %s: %w", descriptor.URI, err)
	}
	if descriptor.MIMEType == "" {
		descriptor.MIMEType = domain.MIMETypeJSON
	}
	return StaticEntry{
		Descriptor: descriptor,
		Contents: []domain.ResourceContents{{
			URI:      descriptor.URI,
			MIMEType: descriptor.MIMEType,
			Text:     string(raw),
		}},
	}, nil
}

type Options struct {
	API      domain.RaindropAPI
	Patterns []Pattern
	Static   []StaticEntry
	Metrics  domain.Metrics
	Logger   *zap.Logger
}

// Resolver reads resources by URI. Its tables are fixed after construction.
type Resolver struct {
	api         domain.RaindropAPI
	patterns    []Pattern
	static      map[string]StaticEntry
	staticOrder []string
	metrics     domain.Metrics
	logger      *zap.Logger
}

func NewResolver(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	patterns := opts.Patterns
	if patterns == nil {
		patterns = DefaultPatterns()
	}

	r := &Resolver{
		api:      opts.API,
		patterns: patterns,
		static:   make(map[string]StaticEntry, len(opts.Static)),
		metrics:  metrics,
		logger:   logger.Named("resolver"),
	}
	for _, entry := range opts.Static {
		uri := entry.Descriptor.URI
		if _, exists := r.static[uri]; !exists {
			r.staticOrder = append(r.staticOrder, uri)
		}
		r.static[uri] = entry
	}
	return r
}

// Read resolves uri: dynamic patterns first, then the static table.
func (r *Resolver) Read(ctx context.Context, uri string) (result *domain.ResourceResult, err error) {
	kind := KindUnknown
	start := time.Now()
	defer func() {
		r.metrics.ObserveResourceRead(kind, time.Since(start), err)
		logger := telemetry.LoggerWithRequest(ctx, r.logger)
		if err != nil {
			logger.Debug("resource read failed",
				telemetry.EventField(telemetry.EventResourceRead),
				telemetry.URIField(uri),
				zap.String("kind", kind),
				zap.Error(err),
			)
			return
		}
		logger.Debug("resource read",
			telemetry.EventField(telemetry.EventResourceRead),
			telemetry.URIField(uri),
			zap.String("kind", kind),
			telemetry.DurationField(time.Since(start)),
		)
	}()

	for _, pattern := range r.patterns {
		if !pattern.match(uri) {
			continue
		}
		kind = pattern.Kind
		return r.readDynamic(ctx, pattern, uri)
	}

	entry, ok := r.static[uri]
	if !ok {
		return nil, domain.ResourceNotFound(uri)
	}
	kind = KindStatic
	contents := make([]domain.ResourceContents, len(entry.Contents))
	copy(contents, entry.Contents)
	return &domain.ResourceResult{Contents: contents}, nil
}

func (r *Resolver) readDynamic(ctx context.Context, pattern Pattern, uri string) (*domain.ResourceResult, error) {
	var id int64
	if !pattern.Exact {
		segment := strings.TrimPrefix(uri, pattern.Prefix)
		parsed, err := strconv.ParseInt(segment, 10, 64)
		// Only canonical decimal ids resolve, so "+5" and "005" never alias "5".
		if err != nil || parsed <= 0 || strconv.FormatInt(parsed, 10) != segment {
			return nil, domain.InvalidSegment(uri, segment)
		}
		id = parsed
	}

	if r.api == nil {
		return nil, domain.E(domain.CodeUnavailable, "read resource", fmt.Sprintf("resource %s: collaborator not configured", uri), nil).
			WithMeta("uri", uri)
	}

	payload, err := pattern.Fetch(ctx, r.api, id)
	if err != nil {
		return nil, collaboratorError(uri, err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, "read resource", fmt.Sprintf("resource %s: encode payload", uri), err).
			WithMeta("uri", uri)
	}
	return &domain.ResourceResult{
		Contents: []domain.ResourceContents{{
			URI:      uri,
			MIMEType: domain.MIMETypeJSON,
			Text:     string(raw),
		}},
	}, nil
}

// collaboratorError keeps the backend code but names the URI, so a failing
// lookup reads differently from an unknown resource.
func collaboratorError(uri string, err error) error {
	code := domain.CodeUnavailable
	msg := err.Error()
	retryable := false
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		retryable = domainErr.Retryable
		if domainErr.Message != "" {
			msg = domainErr.Message
		}
	}
	if errors.Is(err, context.Canceled) {
		code = domain.CodeCanceled
	}
	wrapped := domain.E(code, "read resource", fmt.Sprintf("resource %s: %s", uri, msg), err)
	wrapped.Retryable = retryable
	return wrapped.WithMeta("uri", uri)
}

// List returns static entries followed by dynamic patterns, one per URI.
func (r *Resolver) List() []domain.ResourceDescriptor {
	seen := make(map[string]struct{}, len(r.staticOrder)+len(r.patterns))
	out := make([]domain.ResourceDescriptor, 0, len(r.staticOrder)+len(r.patterns))
	for _, uri := range r.staticOrder {
		seen[uri] = struct{}{}
		out = append(out, r.static[uri].Descriptor)
	}
	for _, pattern := range r.patterns {
		if _, ok := seen[pattern.Template.URI]; ok {
			continue
		}
		seen[pattern.Template.URI] = struct{}{}
		out = append(out, pattern.Template)
	}
	return out
}

// StaticCount is the number of pre-built resources.
func (r *Resolver) StaticCount() int {
	return len(r.staticOrder)
}
