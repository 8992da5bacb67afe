package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"raindropmcp/internal/app/apptest"
	"raindropmcp/internal/app/registry"
	"raindropmcp/internal/domain"
)

type countingMetrics struct {
	domain.NoopMetrics
	calls []error
}

func (m *countingMetrics) ObserveToolCall(_ string, _ time.Duration, err error) {
	m.calls = append(m.calls, err)
}

func descriptor(name string, handler registry.Handler) registry.ToolDescriptor {
	return registry.ToolDescriptor{
		Name:        name,
		Description: "test tool",
		InputSchema: registry.MustSchemaFor[struct{}](),
		Handler:     handler,
	}
}

func TestDispatchBindsContextAndExtras(t *testing.T) {
	api := apptest.NewFakeAPI()
	d := New(Options{API: api})

	var got registry.ToolContext
	var gotArgs map[string]any
	tool := descriptor("probe", func(_ context.Context, args map[string]any, tc registry.ToolContext) (*domain.ToolResult, error) {
		got, gotArgs = tc, args
		return &domain.ToolResult{Content: []domain.Content{domain.Text("ok")}}, nil
	})

	res, err := d.Dispatch(context.Background(), tool, nil, map[string]any{"sessionId": "s-1"})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	require.Same(t, api, got.API)
	require.NotNil(t, got.Logger)
	require.Equal(t, "s-1", got.Extras["sessionId"])
	require.NotNil(t, gotArgs)
	require.Empty(t, gotArgs)
}

func TestDispatchNormalizesPlainErrors(t *testing.T) {
	metrics := &countingMetrics{}
	d := New(Options{API: apptest.NewFakeAPI(), Metrics: metrics})

	calls := 0
	tool := descriptor("flaky", func(context.Context, map[string]any, registry.ToolContext) (*domain.ToolResult, error) {
		calls++
		return nil, errors.New("upstream exploded")
	})

	res, err := d.Dispatch(context.Background(), tool, map[string]any{}, nil)
	require.Nil(t, res)
	require.Equal(t, 1, calls, "dispatcher must not retry")

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.CodeInternal, domainErr.Code)
	require.Equal(t, "tool flaky", domainErr.Op)
	require.Equal(t, "upstream exploded", domainErr.Message)
	require.Equal(t, "flaky", domainErr.Meta["tool"])
	require.Len(t, metrics.calls, 1)
	require.Error(t, metrics.calls[0])
}

func TestDispatchKeepsCollaboratorCode(t *testing.T) {
	d := New(Options{})
	upstream := domain.E(domain.CodeUnauthenticated, "GET /user", "raindrop api returned 401: bad token", nil)
	tool := descriptor("who", func(context.Context, map[string]any, registry.ToolContext) (*domain.ToolResult, error) {
		return nil, upstream
	})

	_, err := d.Dispatch(context.Background(), tool, nil, nil)
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeUnauthenticated, code)
	require.ErrorIs(t, err, upstream)
	require.Contains(t, err.Error(), "tool who")
	require.Contains(t, err.Error(), "bad token")
}

func TestDispatchKeepsValidationErrors(t *testing.T) {
	d := New(Options{})
	tool := descriptor("collection_manage", func(context.Context, map[string]any, registry.ToolContext) (*domain.ToolResult, error) {
		return nil, domain.MissingField("collection_manage", "create", "title")
	})

	_, err := d.Dispatch(context.Background(), tool, nil, nil)
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Contains(t, err.Error(), `title is required for operation "create"`)
}

func TestDispatchRecoversPanics(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := New(Options{Logger: zap.New(core)})

	tool := descriptor("boom", func(context.Context, map[string]any, registry.ToolContext) (*domain.ToolResult, error) {
		panic("string thrown")
	})

	res, err := d.Dispatch(context.Background(), tool, nil, nil)
	require.Nil(t, res)

	var domainErr *domain.Error
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, domain.CodeInternal, domainErr.Code)
	require.Equal(t, "string thrown", domainErr.Message)
	require.Equal(t, 1, logs.FilterMessage("tool handler panicked").Len())
}

func TestDispatchRejectsEmptyContent(t *testing.T) {
	d := New(Options{})
	tool := descriptor("empty", func(context.Context, map[string]any, registry.ToolContext) (*domain.ToolResult, error) {
		return &domain.ToolResult{}, nil
	})

	_, err := d.Dispatch(context.Background(), tool, nil, nil)
	code, _ := domain.CodeFrom(err)
	require.Equal(t, domain.CodeInternal, code)
}

func TestDispatchCanceledContext(t *testing.T) {
	d := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tool := descriptor("slow", func(ctx context.Context, _ map[string]any, _ registry.ToolContext) (*domain.ToolResult, error) {
		return nil, ctx.Err()
	})

	_, err := d.Dispatch(ctx, tool, nil, nil)
	code, _ := domain.CodeFrom(err)
	require.Equal(t, domain.CodeCanceled, code)
	require.ErrorIs(t, err, context.Canceled)
}
