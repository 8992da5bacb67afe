//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"raindropmcp/internal/infra/config"
)

func InitializeApplication(cfg config.Config) (*Application, error) {
	wire.Build(AppSet)
	return nil, nil
}
