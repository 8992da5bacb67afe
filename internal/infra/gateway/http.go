package gateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/telemetry"
)

type HTTPOptions struct {
	Addr           string
	Path           string
	Token          string
	JSONResponse   bool
	SessionTimeout time.Duration
	Gatherer       prometheus.Gatherer
}

const shutdownTimeout = 5 * time.Second

// HTTPHandler mounts the streamable HTTP endpoint next to /healthz and /metrics.
// Only the MCP endpoint is guarded by the bearer token.
func (g *Gateway) HTTPHandler(opts HTTPOptions) http.Handler {
	path := opts.Path
	if path == "" {
		path = domain.DefaultHTTPPath
	}
	server := g.Server()
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		JSONResponse:   opts.JSONResponse,
		SessionTimeout: opts.SessionTimeout,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestMeta)
	r.Use(middleware.Recoverer)
	telemetry.MountObservability(r, opts.Gatherer, g.core.HealthCheck)
	r.Group(func(r chi.Router) {
		r.Use(bearerAuth(opts.Token))
		r.Handle(path, mcpHandler)
	})
	return r
}

// RunStreamableHTTP serves the protocol over HTTP until ctx is canceled, then
// shuts the listener down gracefully.
func (g *Gateway) RunStreamableHTTP(ctx context.Context, opts HTTPOptions) error {
	if strings.TrimSpace(opts.Addr) == "" {
		return errors.New("http address is required")
	}
	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           g.HTTPHandler(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		g.logger.Info("gateway starting (streamable http transport)",
			zap.String("addr", opts.Addr),
			zap.String("path", opts.Path),
			zap.Bool("json_response", opts.JSONResponse),
			zap.Bool("auth", opts.Token != ""),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("streamable http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			g.logger.Error("streamable http shutdown error", zap.Error(err))
			return err
		}
		g.logger.Info("streamable http server stopped")
		return nil
	}
}

// requestMeta adopts the router's request id so tool logs and outbound API
// calls carry the same value.
func requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(telemetry.RequestIDHeader)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}
		ctx, meta := telemetry.EnsureRequestMeta(r.Context(), id)
		w.Header().Set(telemetry.RequestIDHeader, meta.RequestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		expected := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
