package agentql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"agentql-tools/internal/application/port/output"
	"agentql-tools/internal/domain/entity"
	"agentql-tools/internal/infrastructure/logger"
)

const (
	DefaultEndpoint         = "https://api.agentql.com/v1/query-data"
	DefaultValidateEndpoint = "https://api.agentql.com/v1/validate-api-key"

	// DefaultValidateTimeout bounds the credential check, which does no extraction work.
	DefaultValidateTimeout = 30 * time.Second

	maxResponseBytes = 64 << 20
)

var (
	_ output.ExtractionPort      = (*Client)(nil)
	_ output.CredentialValidator = (*Client)(nil)
)

// Doer is the slice of *http.Client the client needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	APIKey           string
	Endpoint         string
	ValidateEndpoint string
	Timeout          time.Duration
	ValidateTimeout  time.Duration
	RequestOrigin    string
}

func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:           apiKey,
		Endpoint:         DefaultEndpoint,
		ValidateEndpoint: DefaultValidateEndpoint,
		Timeout:          entity.DefaultAPITimeout,
		ValidateTimeout:  DefaultValidateTimeout,
		RequestOrigin:    entity.DefaultRequestOrigin,
	}
}

type Option func(*Client)

func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

func WithLogger(log output.LoggerPort) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithEnvLookup replaces os.LookupEnv when resolving the API key.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(c *Client) {
		if lookup != nil {
			c.lookup = lookup
		}
	}
}

// Client talks to the AgentQL query-data endpoint. It holds no per-call state
// and is safe for concurrent use.
type Client struct {
	apiKey           string
	endpoint         string
	validateEndpoint string
	timeout          time.Duration
	validateTimeout  time.Duration
	requestOrigin    string

	http   Doer
	log    output.LoggerPort
	lookup func(string) (string, bool)
}

// NewClient resolves the API key and returns a ready client. A missing key is
// reported as a ConfigurationError before any request is attempted.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		endpoint:         cfg.Endpoint,
		validateEndpoint: cfg.ValidateEndpoint,
		timeout:          cfg.Timeout,
		validateTimeout:  cfg.ValidateTimeout,
		requestOrigin:    cfg.RequestOrigin,
		http:             http.DefaultClient,
		log:              logger.NewNopLogger(),
		lookup:           os.LookupEnv,
	}
	for _, opt := range opts {
		opt(c)
	}

	key, err := ResolveAPIKey(cfg.APIKey, c.lookup)
	if err != nil {
		return nil, err
	}
	c.apiKey = key

	if c.endpoint == "" {
		c.endpoint = DefaultEndpoint
	}
	if c.validateEndpoint == "" {
		c.validateEndpoint = DefaultValidateEndpoint
	}
	if c.timeout <= 0 {
		c.timeout = entity.DefaultAPITimeout
	}
	if c.validateTimeout <= 0 {
		c.validateTimeout = DefaultValidateTimeout
	}
	if c.requestOrigin == "" {
		c.requestOrigin = entity.DefaultRequestOrigin
	}
	return c, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Extract validates req, posts it and maps the answer. Invalid input never
// reaches the network.
func (c *Client) Extract(ctx context.Context, req entity.ExtractionRequest) (*entity.ExtractionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := c.log.WithFields(map[string]any{
		"call_id": uuid.NewString(),
		"url":     req.URL,
	})

	httpReq, err := c.newQueryRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log.Debug("agentql query started", "timeout", timeout.String(), "mode", string(req.Params.Mode))

	status, body, err := c.do(httpReq)
	if err != nil {
		log.Warn("agentql query failed", "error", err, "elapsed", time.Since(start).String())
		return nil, &entity.TransportError{Op: "query data", Err: err}
	}

	result, err := mapResponse(status, body)
	if err != nil {
		log.Warn("agentql query rejected", "status", status, "error", err)
		return nil, err
	}

	log.Info("agentql query completed",
		"status", status,
		"request_id", result.RequestID(),
		"elapsed", time.Since(start).String(),
	)
	return result, nil
}

// ExtractAsync runs Extract on its own goroutine. The returned channel
// receives exactly one outcome and is then closed.
func (c *Client) ExtractAsync(ctx context.Context, req entity.ExtractionRequest) <-chan entity.ExtractionOutcome {
	out := make(chan entity.ExtractionOutcome, 1)
	go func() {
		defer close(out)
		result, err := c.Extract(ctx, req)
		out <- entity.ExtractionOutcome{Result: result, Err: err}
	}()
	return out
}

// ValidateAPIKey checks the configured key against the validation endpoint.
func (c *Client) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.validateTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.validateEndpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set(headerAPIKey, c.apiKey)
	httpReq.Header.Set(headerRequestOrigin, c.requestOrigin)

	status, body, err := c.do(httpReq)
	if err != nil {
		return &entity.TransportError{Op: "validate api key", Err: err}
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return entity.NewAuthenticationError()
	case status == http.StatusInternalServerError:
		return &entity.ServiceError{Message: entity.MsgInternalServerError, StatusCode: status}
	default:
		msg, requestID := errorMessage(status, body)
		return &entity.ServiceError{Message: msg, StatusCode: status, RequestID: requestID}
	}
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}
