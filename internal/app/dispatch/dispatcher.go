package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"raindropmcp/internal/app/registry"
	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/telemetry"
)

// Dispatcher invokes tool handlers with the shared collaborator context and
// normalizes every failure into *domain.Error. It never retries.
type Dispatcher struct {
	api         domain.RaindropAPI
	diagnostics domain.DiagnosticsProvider
	metrics     domain.Metrics
	logger      *zap.Logger
}

type Options struct {
	API         domain.RaindropAPI
	Diagnostics domain.DiagnosticsProvider
	Metrics     domain.Metrics
	Logger      *zap.Logger
}

func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	return &Dispatcher{
		api:         opts.API,
		diagnostics: opts.Diagnostics,
		metrics:     metrics,
		logger:      logger.Named("dispatcher"),
	}
}

// Dispatch runs tool with args. extras are passed through to the handler.
func (d *Dispatcher) Dispatch(ctx context.Context, tool registry.ToolDescriptor, args map[string]any, extras map[string]any) (result *domain.ToolResult, err error) {
	if args == nil {
		args = map[string]any{}
	}
	logger := telemetry.LoggerWithRequest(ctx, d.logger).With(telemetry.ToolField(tool.Name))
	start := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("tool handler panicked",
				telemetry.EventField(telemetry.EventToolPanic),
				zap.Any("panic", recovered),
				zap.Stack("stack"),
			)
			result = nil
			err = domain.FromPanic("tool "+tool.Name, recovered).WithMeta("tool", tool.Name)
		}
		duration := time.Since(start)
		d.metrics.ObserveToolCall(tool.Name, duration, err)
		if err != nil {
			logger.Warn("tool call failed",
				telemetry.EventField(telemetry.EventToolFailure),
				telemetry.DurationField(duration),
				zap.Error(err),
			)
			return
		}
		logger.Debug("tool call completed",
			telemetry.EventField(telemetry.EventToolCall),
			telemetry.DurationField(duration),
			zap.Bool("isError", result.IsError),
		)
	}()

	result, err = tool.Handler(ctx, args, registry.ToolContext{
		API:         d.api,
		Logger:      logger,
		Diagnostics: d.diagnostics,
		Extras:      extras,
	})
	if err != nil {
		return nil, normalize(ctx, tool.Name, err)
	}
	if result == nil || len(result.Content) == 0 {
		return nil, domain.E(domain.CodeInternal, "tool "+tool.Name, "handler returned no content", nil).
			WithMeta("tool", tool.Name)
	}
	return result, nil
}

// normalize gives every handler error the *domain.Error shape tagged with
// the tool. Validation errors keep their op; other errors are re-scoped to
// the tool with the original code and message.
func normalize(ctx context.Context, tool string, err error) error {
	op := "tool " + tool

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		if domainErr.Code == domain.CodeInvalidArgument {
			return domainErr.WithMeta("tool", tool)
		}
		wrapped := &domain.Error{
			Code:      domainErr.Code,
			Op:        op,
			Message:   domainErr.Message,
			Cause:     err,
			Retryable: domainErr.Retryable,
			Meta:      domainErr.Meta,
		}
		return wrapped.WithMeta("tool", tool)
	}

	code := domain.CodeInternal
	switch {
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		code = domain.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = domain.CodeDeadlineExceeded
	}
	return domain.E(code, op, "", err).WithMeta("tool", tool)
}
