package outbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	HeaderServiceKey    = "X-Inter-Service-Key"
	HeaderSourceService = "X-Source-Service"

	SourceService = "cyberxltr-admin"
)

// Bodies beyond this size are cut while reading; the store keeps fewer characters anyway.
const maxResponseRead = 64 << 10

var errUnexpectedStatus = errors.New("unexpected downstream status")

type Response struct {
	StatusCode int
	Body       string
}

// Successful reports whether the downstream accepted the payload.
func (r *Response) Successful() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

type BreakerConfig struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// Client posts enveloped payloads to the downstream sync namespace.
type Client struct {
	l          *zap.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBreaker trips after cfg.ConsecutiveFailures failed posts and rejects
// calls until cfg.OpenTimeout elapses.
func WithBreaker(cfg BreakerConfig) ClientOption {
	return func(c *Client) {
		threshold := cfg.ConsecutiveFailures
		if threshold == 0 {
			threshold = 5
		}

		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "cyberxltr-sync",
			MaxRequests: cfg.HalfOpenRequests,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				c.l.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
}

func NewClient(l *zap.Logger, baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		l:          l.With(zap.String("component", "sync_client")),
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Available is false only while the breaker is open.
func (c *Client) Available() bool {
	return c.breaker == nil || c.breaker.State() != gobreaker.StateOpen
}

// Post sends payload to baseURL+endpoint. A non-nil error means no response
// was obtained; any status code is returned as a Response.
func (c *Client) Post(ctx context.Context, endpoint string, payload []byte) (*Response, error) {
	if c.breaker == nil {
		return c.post(ctx, endpoint, payload)
	}

	var resp *Response

	_, err := c.breaker.Execute(func() (any, error) {
		r, err := c.post(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}

		resp = r
		if !r.Successful() {
			return nil, errUnexpectedStatus
		}

		return nil, nil
	})
	if err != nil && !errors.Is(err, errUnexpectedStatus) {
		return nil, err
	}

	return resp, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderServiceKey, c.apiKey)
	req.Header.Set(HeaderSourceService, SourceService)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}, nil
}
