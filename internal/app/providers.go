package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"raindropmcp/internal/app/registry"
	"raindropmcp/internal/app/server"
	"raindropmcp/internal/buildinfo"
	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/config"
	"raindropmcp/internal/infra/gateway"
	"raindropmcp/internal/infra/raindrop"
	"raindropmcp/internal/infra/telemetry"
)

func NewLogger(cfg config.Config) (*zap.Logger, error) {
	return telemetry.NewLogger(telemetry.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func NewMetrics(reg *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(reg)
}

func NewRaindropClient(cfg config.Config, metrics domain.Metrics, logger *zap.Logger) (domain.RaindropAPI, error) {
	return raindrop.NewClient(raindrop.Options{
		BaseURL:           cfg.Raindrop.BaseURL,
		Token:             cfg.Raindrop.AccessToken,
		Timeout:           cfg.Raindrop.Timeout(),
		RequestsPerMinute: cfg.Raindrop.RequestsPerMinute,
		MaxRetries:        cfg.Raindrop.MaxRetries,
		Metrics:           metrics,
		Logger:            logger,
		UserAgent:         "raindropmcp/" + buildinfo.Version,
	})
}

func NewToolRegistry() (*registry.Registry, error) {
	return registry.NewDefaultRegistry()
}

func ServerInfo() server.Info {
	return server.Info{
		Name:        domain.DefaultServerName,
		Version:     buildinfo.Version,
		Description: domain.DefaultServerDescription,
	}
}

func NewServer(cfg config.Config, api domain.RaindropAPI, tools *registry.Registry, metrics domain.Metrics, logger *zap.Logger) (*server.Server, error) {
	return server.New(server.Options{
		Info:        ServerInfo(),
		Build:       buildinfo.Build,
		Transport:   cfg.Transport,
		API:         api,
		Registry:    tools,
		Metrics:     metrics,
		Logger:      logger,
		Environment: cfg.Redacted,
	})
}

func NewGateway(srv *server.Server, logger *zap.Logger) *gateway.Gateway {
	info := srv.Info()
	return gateway.NewGateway(srv, gateway.Options{
		Name:         info.Name,
		Version:      info.Version,
		Instructions: info.Description,
		Logger:       logger,
	})
}

// NewOfflineServer builds the facade without a collaborator. It serves the
// manifest and tool listing commands, which never reach the API.
func NewOfflineServer(transport string) (*server.Server, error) {
	tools, err := NewToolRegistry()
	if err != nil {
		return nil, err
	}
	return server.New(server.Options{
		Info:      ServerInfo(),
		Build:     buildinfo.Build,
		Transport: transport,
		Registry:  tools,
	})
}
