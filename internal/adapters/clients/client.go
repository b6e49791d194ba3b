package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pai-platform/insight-service/internal/adapters/http/middleware"
	"github.com/pai-platform/insight-service/internal/platform/logging"
)

const clientInstrumentationName = "github.com/pai-platform/insight-service/internal/adapters/clients"

const (
	defaultTimeout = 10 * time.Second

	backoffJitterFactor = 0.25

	transportMaxIdleConns        = 100
	transportMaxIdleConnsPerHost = 10
	transportIdleConnTimeout     = 90 * time.Second
)

// RetryConfig configures retry behavior for one upstream.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is the base URL for all requests.
	BaseURL string

	// ServiceName identifies the upstream for logging and tracing.
	ServiceName string

	// Timeout is the per-attempt request timeout. Total wall-clock time may
	// exceed it due to retries and backoff.
	Timeout time.Duration

	Retry   RetryConfig
	Breaker BreakerConfig

	// AuthFunc injects authentication into each attempt, including retries.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client is an instrumented HTTP client for one upstream service: retries
// with exponential backoff and jitter, circuit breaking, tracing, and trace
// context propagation.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	breaker     *Breaker
	tracer      trace.Tracer
}

// New creates an instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("upstream", cfg.ServiceName),
	)

	breaker := NewBreaker(cfg.Breaker)
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        transportMaxIdleConns,
			MaxIdleConnsPerHost: transportMaxIdleConnsPerHost,
			IdleConnTimeout:     transportIdleConnTimeout,
		},
	}

	return &Client{
		http:        httpClient,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		breaker:     breaker,
		tracer:      otel.Tracer(clientInstrumentationName),
	}, nil
}

// Get performs an HTTP GET against the upstream.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(ctx, req)
}

// Do executes the request with breaker, retry, and tracing.
//
// Retry only works for requests with no body or with req.GetBody set.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	logger := logging.FromContext(ctx).With(
		slog.String("upstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.breaker.Allow() {
		logger.Warn("request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}
	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	resp, err := c.executeWithRetry(ctx, req, logger)
	if err != nil {
		c.breaker.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		logger.Error("request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err)
	}

	c.breaker.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	return resp, nil
}

func (c *Client) executeWithRetry(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.backoff(attempt)
			logger.Debug("retrying request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}

			// Re-inject auth: the token may have rotated.
			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		if err != nil {
			if !isRetryable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// CircuitState returns the breaker's current state.
func (c *Client) CircuitState() State {
	return c.breaker.State()
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// backoff returns the exponential backoff with ±25% jitter for an attempt.
func (c *Client) backoff(attempt int) time.Duration {
	d := float64(c.cfg.Retry.InitialInterval) * math.Pow(c.cfg.Retry.Multiplier, float64(attempt))
	if max := float64(c.cfg.Retry.MaxInterval); c.cfg.Retry.MaxInterval > 0 && d > max {
		d = max
	}

	jitter := d * backoffJitterFactor * (rand.Float64()*2 - 1) //nolint:gosec // No need for crypto-grade randomness
	return time.Duration(d + jitter)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
