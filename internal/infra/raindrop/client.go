package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"raindropmcp/internal/domain"
	"raindropmcp/internal/infra/telemetry"
)

const maxErrorBody = 64 << 10

const (
	metaStatus = "status"
	metaDialed = "dial_failed"
)

type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxRetries        int
	RetryBase         time.Duration
	RetryMax          time.Duration
	HTTPClient        *http.Client
	Metrics           domain.Metrics
	Logger            *zap.Logger
	UserAgent         string
}

// Client talks to the Raindrop.io REST API and implements domain.RaindropAPI.
// It owns rate limiting and retry; callers above it never retry.
type Client struct {
	baseURL    string
	token      string
	userAgent  string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
	retryMax   time.Duration
	metrics    domain.Metrics
	logger     *zap.Logger
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = domain.DefaultRaindropBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse raindrop base url: %w", err)
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("raindrop access token is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultRaindropTimeout) * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = domain.DefaultRequestsPerMinute
	}
	burst := rpm / 6
	if burst < 1 {
		burst = 1
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultServerName
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL:    base,
		token:      opts.Token,
		userAgent:  userAgent,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
		maxRetries: maxRetries,
		retryBase:  opts.RetryBase,
		retryMax:   opts.RetryMax,
		metrics:    metrics,
		logger:     logger.Named("raindrop_client"),
	}, nil
}

// call describes one API request. endpoint is the path template used as a
// metrics label; path is the concrete path.
type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     any
}

func (c *Client) do(ctx context.Context, req call) (envelope, error) {
	op := req.method + " " + req.endpoint

	var payload []byte
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return envelope{}, domain.E(domain.CodeInternal, op, "encode request body", err)
		}
		payload = encoded
	}

	retryMax := c.retryMax
	if retryMax <= 0 {
		retryMax = 8 * time.Second
	}
	wait := newBackoff(c.retryBase, retryMax)

	for attempt := 0; ; attempt++ {
		env, err := c.attempt(ctx, op, req, payload)
		if err == nil {
			return env, nil
		}
		var domainErr *domain.Error
		if !errors.As(err, &domainErr) || !retryAllowed(req.method, domainErr) || attempt >= c.maxRetries {
			return envelope{}, err
		}
		c.logger.Warn("retrying raindrop request",
			telemetry.EventField(telemetry.EventAPIRetry),
			zap.String("endpoint", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if sleepErr := wait.Sleep(ctx); sleepErr != nil {
			return envelope{}, contextError(op, sleepErr)
		}
	}
}

func (c *Client) attempt(ctx context.Context, op string, req call, payload []byte) (envelope, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return envelope{}, contextError(op, err)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return envelope{}, domain.E(domain.CodeInternal, op, "build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if requestID, ok := telemetry.RequestIDFromContext(ctx); ok {
		httpReq.Header.Set(telemetry.RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveAPIRequest(req.method, req.endpoint, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return envelope{}, contextError(op, ctxErr)
		}
		transportErr := domain.E(domain.CodeUnavailable, op, "raindrop api unreachable", err)
		if isDialError(err) {
			transportErr = transportErr.WithMeta(metaDialed, "true")
		}
		transportErr.Retryable = true
		return envelope{}, transportErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	duration := time.Since(start)
	c.metrics.ObserveAPIRequest(req.method, req.endpoint, resp.StatusCode, duration)
	c.logger.Debug("raindrop request",
		zap.String("endpoint", op),
		telemetry.StatusField(resp.StatusCode),
		telemetry.DurationField(duration),
	)
	if err != nil {
		return envelope{}, domain.E(domain.CodeUnavailable, op, "read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return envelope{}, statusError(op, resp.StatusCode, raw)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, domain.E(domain.CodeInternal, op, "decode response", err)
		}
	}
	return env, nil
}

// retryAllowed reports whether a failed attempt may be sent again. POST creates
// entities, so it is only resent after a 429 or when the connection was never made.
func retryAllowed(method string, err *domain.Error) bool {
	if !err.Retryable {
		return false
	}
	if method != http.MethodPost {
		return true
	}
	return err.Meta[metaStatus] == strconv.Itoa(http.StatusTooManyRequests) || err.Meta[metaDialed] == "true"
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func contextError(op string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return domain.E(domain.CodeCanceled, op, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.E(domain.CodeDeadlineExceeded, op, "", err)
	default:
		return domain.E(domain.CodeUnavailable, op, "", err)
	}
}

// fetch runs req and requires a successful envelope.
func (c *Client) fetch(ctx context.Context, req call) (envelope, error) {
	env, err := c.do(ctx, req)
	if err != nil {
		return envelope{}, err
	}
	if !env.ok() {
		msg := env.message()
		if msg == "" {
			msg = "request reported failure"
		}
		return envelope{}, domain.E(domain.CodeInternal, req.method+" "+req.endpoint, msg, nil)
	}
	return env, nil
}

func (c *Client) item(ctx context.Context, req call, out any) error {
	env, err := c.fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := decodeInto(env.Item, out); err != nil {
		return domain.E(domain.CodeInternal, req.method+" "+req.endpoint, "decode item", err)
	}
	return nil
}

func (c *Client) items(ctx context.Context, req call, out any) (envelope, error) {
	env, err := c.fetch(ctx, req)
	if err != nil {
		return envelope{}, err
	}
	if err := decodeInto(env.Items, out); err != nil {
		return envelope{}, domain.E(domain.CodeInternal, req.method+" "+req.endpoint, "decode items", err)
	}
	return env, nil
}

var _ domain.RaindropAPI = (*Client)(nil)
