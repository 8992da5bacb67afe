package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"raindropmcp/internal/app"
	"raindropmcp/internal/buildinfo"
	"raindropmcp/internal/infra/config"
)

type rootOptions struct {
	configPath string
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCmd(logger, opts)
	root := &cobra.Command{
		Use:           "raindropmcp",
		Short:         "Model Context Protocol server for Raindrop.io bookmarks",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional config file (yaml, json or toml)")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		serve,
		newValidateCmd(logger, opts),
		newManifestCmd(),
		newToolsCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over the configured transport",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			cfg, err := loadConfig(ctx, cmd, logger, opts)
			if err != nil {
				return err
			}
			application, err := app.InitializeApplication(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = application.Logger().Sync() }()
			return application.Run(ctx)
		},
	}
}

func newValidateCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without contacting Raindrop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Context(), cmd, logger, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cfg.Redacted())
		},
	}
}

func loadConfig(ctx context.Context, cmd *cobra.Command, logger *zap.Logger, opts *rootOptions) (config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return config.NewLoader(logger).Load(ctx, config.LoadOptions{
		Path:  opts.configPath,
		Flags: cmd.Flags(),
	})
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
