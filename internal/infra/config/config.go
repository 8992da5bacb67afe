package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"raindropmcp/internal/domain"
)

type Config struct {
	Raindrop      RaindropConfig      `mapstructure:"raindrop"`
	Log           LogConfig           `mapstructure:"log"`
	Transport     string              `mapstructure:"transport"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type RaindropConfig struct {
	AccessToken       string `mapstructure:"accessToken"`
	BaseURL           string `mapstructure:"baseURL"`
	TimeoutSeconds    int    `mapstructure:"timeoutSeconds"`
	RequestsPerMinute int    `mapstructure:"requestsPerMinute"`
	MaxRetries        int    `mapstructure:"maxRetries"`
}

func (c RaindropConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Addr                  string `mapstructure:"addr"`
	Path                  string `mapstructure:"path"`
	Token                 string `mapstructure:"token"`
	JSONResponse          bool   `mapstructure:"jsonResponse"`
	SessionTimeoutSeconds int    `mapstructure:"sessionTimeoutSeconds"`
}

func (c HTTPConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutSeconds) * time.Second
}

type ObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

// Validate reports every problem at once so a misconfigured deployment can be
// fixed in one pass.
func (c Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Raindrop.AccessToken) == "" {
		errs = append(errs, "raindrop.accessToken is required (set RAINDROP_ACCESS_TOKEN)")
	}
	if !strings.HasPrefix(c.Raindrop.BaseURL, "http://") && !strings.HasPrefix(c.Raindrop.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("raindrop.baseURL must be an http(s) URL, got %q", c.Raindrop.BaseURL))
	}
	if c.Raindrop.TimeoutSeconds <= 0 {
		errs = append(errs, "raindrop.timeoutSeconds must be > 0")
	}
	if c.Raindrop.RequestsPerMinute <= 0 {
		errs = append(errs, "raindrop.requestsPerMinute must be > 0")
	}
	if c.Raindrop.MaxRetries < 0 {
		errs = append(errs, "raindrop.maxRetries must be >= 0")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or console, got %q", c.Log.Format))
	}

	switch c.Transport {
	case domain.TransportStdio:
	case domain.TransportStreamableHTTP:
		if !strings.HasPrefix(c.HTTP.Path, "/") {
			errs = append(errs, "http.path must start with /")
		}
		if c.HTTP.SessionTimeoutSeconds < 0 {
			errs = append(errs, "http.sessionTimeoutSeconds must be >= 0")
		}
		if strings.TrimSpace(c.HTTP.Token) == "" && !isLoopback(c.HTTP.Addr) {
			errs = append(errs, fmt.Sprintf("http.token is required when binding to non-loopback address %q", c.HTTP.Addr))
		}
	default:
		errs = append(errs, fmt.Sprintf("transport must be %q or %q, got %q",
			domain.TransportStdio, domain.TransportStreamableHTTP, c.Transport))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Redacted returns the effective settings with secrets masked.
func (c Config) Redacted() map[string]any {
	return map[string]any{
		"raindrop.accessToken":        redact(c.Raindrop.AccessToken),
		"raindrop.baseURL":            c.Raindrop.BaseURL,
		"raindrop.timeoutSeconds":     c.Raindrop.TimeoutSeconds,
		"raindrop.requestsPerMinute":  c.Raindrop.RequestsPerMinute,
		"raindrop.maxRetries":         c.Raindrop.MaxRetries,
		"log.level":                   c.Log.Level,
		"log.format":                  c.Log.Format,
		"transport":                   c.Transport,
		"http.addr":                   c.HTTP.Addr,
		"http.path":                   c.HTTP.Path,
		"http.token":                  redact(c.HTTP.Token),
		"http.jsonResponse":           c.HTTP.JSONResponse,
		"observability.listenAddress": c.Observability.ListenAddress,
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[redacted]"
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
