package registry

import (
	"context"

	"raindropmcp/internal/domain"
)

const toolDiagnostics = "diagnostics"

type diagnosticsArgs struct {
	IncludeEnvironment bool `json:"includeEnvironment,omitempty" jsonschema:"include effective configuration with secrets redacted"`
}

func diagnosticsTool() ToolDescriptor {
	return ToolDescriptor{
		Name:         toolDiagnostics,
		Title:        "Server diagnostics",
		Description:  "Report server version, uptime and runtime details as a diagnostics://server resource link.",
		InputSchema:  MustSchemaFor[diagnosticsArgs](),
		OutputSchema: MustSchemaFor[domain.DiagnosticsSnapshot](),
		ReadOnly:     true,
		Handler:      diagnostics,
	}
}

func diagnostics(_ context.Context, raw map[string]any, tc ToolContext) (*domain.ToolResult, error) {
	args, err := decodeArgs[diagnosticsArgs](toolDiagnostics, raw)
	if err != nil {
		return nil, err
	}
	if tc.Diagnostics == nil {
		return nil, domain.E(domain.CodeUnavailable, toolDiagnostics, "diagnostics provider not configured", nil)
	}
	snapshot := tc.Diagnostics.Snapshot(args.IncludeEnvironment)
	return &domain.ToolResult{
		Content: []domain.Content{&domain.ResourceLinkContent{
			URI:         domain.DiagnosticsURI,
			Name:        "Server diagnostics",
			Description: snapshot.Name + " " + snapshot.Version,
			MIMEType:    domain.MIMETypeJSON,
			Meta:        map[string]any{"diagnostics": snapshot},
		}},
		Structured: snapshot,
	}, nil
}
