package server

import (
	"os"
	"runtime"
	"time"

	"raindropmcp/internal/domain"
)

// Runtime produces diagnostics snapshots for the running process.
type Runtime struct {
	info          Info
	build         string
	transport     string
	startedAt     time.Time
	now           func() time.Time
	toolCount     int
	resourceCount int
	environment   func() map[string]any
}

func (r *Runtime) Snapshot(includeEnvironment bool) domain.DiagnosticsSnapshot {
	snapshot := domain.DiagnosticsSnapshot{
		Name:          r.info.Name,
		Version:       r.info.Version,
		Build:         r.build,
		GoVersion:     runtime.Version(),
		PID:           os.Getpid(),
		StartedAt:     r.startedAt.UTC().Format(time.RFC3339),
		UptimeSeconds: r.now().Sub(r.startedAt).Seconds(),
		ToolCount:     r.toolCount,
		ResourceCount: r.resourceCount,
		Transport:     r.transport,
	}
	if includeEnvironment && r.environment != nil {
		snapshot.Environment = r.environment()
	}
	return snapshot
}

func (r *Runtime) Uptime() time.Duration {
	return r.now().Sub(r.startedAt)
}

var _ domain.DiagnosticsProvider = (*Runtime)(nil)
