package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"raindropmcp/internal/app/server"
	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/config"
	"raindropmcp/internal/infra/gateway"
	"raindropmcp/internal/infra/telemetry"
)

// Application wires the facade to its transport and observability listener.
type Application struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	server   *server.Server
	gateway  *gateway.Gateway
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Config   config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Server   *server.Server
	Gateway  *gateway.Gateway
}

func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		cfg:      opts.Config,
		logger:   logger,
		registry: opts.Registry,
		server:   opts.Server,
		gateway:  opts.Gateway,
	}
}

func (a *Application) Logger() *zap.Logger {
	return a.logger
}

func (a *Application) Server() *server.Server {
	return a.server
}

// Run serves the configured transport and blocks until ctx is canceled.
func (a *Application) Run(ctx context.Context) error {
	info := a.server.Info()
	a.logger.Info("starting",
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("transport", a.cfg.Transport),
		zap.Int("tools", len(a.server.ListTools())),
		zap.Int("resources", len(a.server.ListResources())),
	)

	switch a.cfg.Transport {
	case "", domain.TransportStdio:
		return a.runStdio(ctx)
	case domain.TransportStreamableHTTP:
		return a.gateway.RunStreamableHTTP(ctx, gateway.HTTPOptions{
			Addr:           a.cfg.HTTP.Addr,
			Path:           a.cfg.HTTP.Path,
			Token:          a.cfg.HTTP.Token,
			JSONResponse:   a.cfg.HTTP.JSONResponse,
			SessionTimeout: a.cfg.HTTP.SessionTimeout(),
			Gatherer:       a.registry,
		})
	default:
		return fmt.Errorf("unsupported transport: %s", a.cfg.Transport)
	}
}

// runStdio serves the protocol on stdio. The metrics/health listener runs
// beside it only when an observability address is configured.
func (a *Application) runStdio(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if addr := a.cfg.Observability.ListenAddress; addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := telemetry.StartHTTPServer(runCtx, telemetry.HTTPServerOptions{
				Addr:     addr,
				Gatherer: a.registry,
				Health:   a.server.HealthCheck,
			}, a.logger)
			if err != nil {
				a.logger.Warn("observability server exited", zap.Error(err))
			}
		}()
	}

	err := a.gateway.Run(runCtx)
	cancel()
	wg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
