package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"raindropmcp/internal/domain"
)

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"raindrop.accessToken":        "RAINDROP_ACCESS_TOKEN",
	"raindrop.baseURL":            "RAINDROP_API_BASE_URL",
	"raindrop.timeoutSeconds":     "RAINDROP_TIMEOUT_SECONDS",
	"raindrop.requestsPerMinute":  "RAINDROP_REQUESTS_PER_MINUTE",
	"raindrop.maxRetries":         "RAINDROP_MAX_RETRIES",
	"log.level":                   "LOG_LEVEL",
	"log.format":                  "LOG_FORMAT",
	"transport":                   "MCP_TRANSPORT",
	"http.addr":                   "MCP_HTTP_ADDR",
	"http.path":                   "MCP_HTTP_PATH",
	"http.token":                  "MCP_HTTP_TOKEN",
	"http.jsonResponse":           "MCP_HTTP_JSON_RESPONSE",
	"http.sessionTimeoutSeconds":  "MCP_HTTP_SESSION_TIMEOUT_SECONDS",
	"observability.listenAddress": "MCP_METRICS_ADDR",
}

// flagBindings maps config keys to the CLI flags registered by BindFlags.
var flagBindings = map[string]string{
	"transport":                   "transport",
	"http.addr":                   "http-addr",
	"http.path":                   "http-path",
	"log.level":                   "log-level",
	"log.format":                  "log-format",
	"observability.listenAddress": "metrics-addr",
}

const defaultSessionTimeoutSeconds = 1800

func setDefaults(v *viper.Viper) {
	v.SetDefault("raindrop.baseURL", domain.DefaultRaindropBaseURL)
	v.SetDefault("raindrop.timeoutSeconds", domain.DefaultRaindropTimeout)
	v.SetDefault("raindrop.requestsPerMinute", domain.DefaultRequestsPerMinute)
	v.SetDefault("raindrop.maxRetries", domain.DefaultRaindropMaxRetries)
	v.SetDefault("log.level", domain.DefaultLogLevel)
	v.SetDefault("log.format", domain.DefaultLogFormat)
	v.SetDefault("transport", domain.DefaultTransport)
	v.SetDefault("http.addr", domain.DefaultHTTPAddr)
	v.SetDefault("http.path", domain.DefaultHTTPPath)
	v.SetDefault("http.jsonResponse", false)
	v.SetDefault("http.sessionTimeoutSeconds", defaultSessionTimeoutSeconds)
	v.SetDefault("observability.listenAddress", "")
}

// BindFlags registers the overridable settings on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("transport", domain.DefaultTransport, "protocol transport (stdio|streamable-http)")
	fs.String("http-addr", domain.DefaultHTTPAddr, "listen address for the streamable HTTP transport")
	fs.String("http-path", domain.DefaultHTTPPath, "endpoint path for the streamable HTTP transport")
	fs.String("log-level", domain.DefaultLogLevel, "log level (debug|info|warn|error)")
	fs.String("log-format", domain.DefaultLogFormat, "log encoding (json|console)")
	fs.String("metrics-addr", "", "listen address for /metrics and /healthz in stdio mode (empty disables)")
}

type LoadOptions struct {
	// Path is an optional config file; yaml and json files get ${VAR} expansion.
	Path  string
	Flags *pflag.FlagSet
}

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

// Load resolves the configuration with precedence flags > env > file > defaults
// and validates the result.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if opts.Path != "" {
		if err := l.readFile(v, opts.Path); err != nil {
			return Config{}, err
		}
	}

	if opts.Flags != nil {
		for key, name := range flagBindings {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) readFile(v *viper.Viper, path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "yaml", "yml", "json":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	l.logger.Debug("config file loaded", zap.String("path", path))
	return nil
}

func normalize(cfg *Config) {
	cfg.Raindrop.AccessToken = strings.TrimSpace(cfg.Raindrop.AccessToken)
	cfg.Raindrop.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Raindrop.BaseURL), "/")
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.HTTP.Path = strings.TrimSpace(cfg.HTTP.Path)
	cfg.HTTP.Token = strings.TrimSpace(cfg.HTTP.Token)
}
