//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewRaindropClient,
)

var ServerSet = wire.NewSet(
	NewToolRegistry,
	NewServer,
	NewGateway,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ServerSet,
	wire.Struct(new(ApplicationOptions), "Config", "Logger", "Registry", "Server", "Gateway"),
	NewApplication,
)
