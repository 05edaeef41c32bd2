// Package client calls a remote chart suggestion service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/KaramelBytes/chartly-cli/internal/dataset"
	"github.com/KaramelBytes/chartly-cli/internal/server"
)

var (
	// ErrRejected marks a 4xx reply. It is not retried.
	ErrRejected = errors.New("request rejected by service")
	// ErrUnavailable marks transport failures and 5xx replies.
	ErrUnavailable = errors.New("suggestion service unavailable")
)

// StatusError is a non-2xx reply from the service.
type StatusError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("status %d", e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return ErrRejected
	}
	return ErrUnavailable
}

// Config configures the client.
type Config struct {
	// BaseURL is the service root, e.g. http://localhost:8080.
	BaseURL string
	// Timeout bounds each HTTP attempt.
	Timeout time.Duration
	// MaxAttempts is the total number of tries per call.
	MaxAttempts int
	// RetryDelay is the first backoff delay; later delays double.
	RetryDelay time.Duration
	// BreakerThreshold opens the circuit after this many consecutive failed calls.
	BreakerThreshold int
	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client posts datasets to a chart suggestion service.
type Client struct {
	config  Config
	http    *http.Client
	retrier retry.Retry[[]byte]
	breaker circuitbreaker.CircuitBreaker[[]byte]
}

// New creates a client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "chartly-cli/1.0"
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	threshold := cfg.BreakerThreshold
	return &Client{
		config: cfg,
		http:   hc,
		retrier: retry.New[[]byte](retry.Config{
			MaxAttempts:        cfg.MaxAttempts,
			InitialDelay:       cfg.RetryDelay,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{ErrRejected},
		}),
		breaker: circuitbreaker.New[[]byte](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    cfg.BreakerTimeout,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- threshold is positive
			},
		}),
	}, nil
}

// Suggest returns the chart kinds and column types the service computes for ds.
func (c *Client) Suggest(ctx context.Context, ds *dataset.Dataset) (*server.SuggestResponse, error) {
	var out server.SuggestResponse
	if err := c.post(ctx, "/api/charts/suggestions", ds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bindings returns role-bound suggestions for ds.
func (c *Client) Bindings(ctx context.Context, ds *dataset.Dataset) (*server.BindingsResponse, error) {
	var out server.BindingsResponse
	if err := c.post(ctx, "/api/charts/bindings", ds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the service answers GET /.
func (c *Client) Health(ctx context.Context) (*server.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	var out server.HealthStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode health: %w", err)
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, ds *dataset.Dataset, out any) error {
	if ds == nil {
		return errors.New("client: nil dataset")
	}
	records, err := ds.EncodeRecords()
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	payload, err := json.Marshal(struct {
		Data json.RawMessage `json:"data"`
	}{Data: records})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	// last is the most recent attempt's error. A rejected request reports
	// success to the breaker so caller mistakes never open the circuit.
	var last error
	body, err := c.breaker.Execute(ctx, func(ctx context.Context) ([]byte, error) {
		b, err := c.retrier.Do(ctx, func(ctx context.Context) ([]byte, error) {
			b, err := c.attempt(ctx, path, payload)
			last = err
			return b, err
		})
		if err != nil && errors.Is(last, ErrRejected) {
			return nil, nil
		}
		return b, err
	})
	if errors.Is(last, ErrRejected) {
		return last
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if last != nil {
			return last
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// attempt performs one request. The request is rebuilt each time so the
// body reader is fresh.
func (c *Client) attempt(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body)
}

func statusError(code int, body []byte) *StatusError {
	se := &StatusError{StatusCode: code}
	var er server.ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		se.Message, se.Details = er.Error, er.Details
	} else {
		se.Message = strings.TrimSpace(string(body))
		if len(se.Message) > 200 {
			se.Message = se.Message[:200]
		}
	}
	return se
}
