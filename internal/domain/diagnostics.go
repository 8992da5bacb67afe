package domain

// DiagnosticsSnapshot describes the running server for the diagnostics tool
// and the diagnostics://server resource.
type DiagnosticsSnapshot struct {
	Name          string         `json:"name"`
	Version       string         `json:"version"`
	Build         string         `json:"build"`
	GoVersion     string         `json:"goVersion"`
	PID           int            `json:"pid"`
	StartedAt     string         `json:"startedAt"`
	UptimeSeconds float64        `json:"uptimeSeconds"`
	ToolCount     int            `json:"toolCount"`
	ResourceCount int            `json:"resourceCount"`
	Transport     string         `json:"transport"`
	Environment   map[string]any `json:"environment,omitempty"`
}

// DiagnosticsProvider produces live snapshots. Secrets in Environment are redacted.
type DiagnosticsProvider interface {
	Snapshot(includeEnvironment bool) DiagnosticsSnapshot
}
