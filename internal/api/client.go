package api

import (
	"bytes"
	"cardmatch/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request id for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to the recommendation backend. Every call is at most once:
// there is no retry and no backoff.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. The client is copied,
// never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets a client-side timeout. Zero keeps the default of none.
// It applies whatever the option order relative to WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("api") }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	hc := *c.client
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.client = &hc
	return c
}

// Start opens a backend conversation.
func (c *Client) Start(ctx context.Context) (*StartResponse, error) {
	var out StartResponse
	if err := c.do(ctx, "start conversation", http.MethodPost, "/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one answer within a session.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (*ChatResponse, error) {
	var out ChatResponse
	req := ChatRequest{SessionID: sessionID, Message: message}
	if err := c.do(ctx, "send message", http.MethodPost, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitProfile sends the flat profile mapping and returns the
// recommendation text.
func (c *Client) SubmitProfile(ctx context.Context, profile map[string]string) (*SubmitProfileResponse, error) {
	var out SubmitProfileResponse
	if err := c.do(ctx, "submit profile", http.MethodPost, "/submit-profile", profile, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks the backend. Only the status code matters.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health check", http.MethodGet, "/health", nil, nil)
}

// Status fetches the backend's view of a session.
func (c *Client) Status(ctx context.Context, sessionID string) (*StatusResponse, error) {
	var out StatusResponse
	path := "/status/" + url.PathEscape(sessionID)
	if err := c.do(ctx, "get status", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession drops a session on the backend.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	path := "/session/" + url.PathEscape(sessionID)
	return c.do(ctx, "delete session", http.MethodDelete, path, nil, nil)
}

// do issues one JSON request. A non-2xx status fails with *HTTPError
// carrying the body text.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	log := c.logger.With(zap.String("op", op), zap.String("request_id", requestID))
	log.Debug("Sending request", zap.String("method", method), zap.String("path", path))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.record(false)
		log.Warn("Request failed", zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(false)
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.record(false)
		log.Warn("Backend returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)))
		return &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			c.record(false)
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	c.record(true)
	log.Debug("Request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (c *Client) record(success bool) {
	if c.metrics != nil {
		c.metrics.IncrementAPICall(success)
	}
}
