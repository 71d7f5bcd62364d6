package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"visa_referral/internal/config"
	"visa_referral/internal/mockapi"
	"visa_referral/internal/model"
	"visa_referral/internal/storage"

	"go.uber.org/zap"
)

// ErrNoMockTransport is returned when mock data is enabled but nothing answers mock requests.
var ErrNoMockTransport = errors.New("mock data is enabled but no mock transport is configured")

// Envelope is a response whose data is left undecoded.
type Envelope = model.APIResponse[json.RawMessage]

// MockTransport answers requests in process instead of over the network.
type MockTransport interface {
	Dispatch(ctx context.Context, req mockapi.Request) (*model.APIResponse[any], error)
}

// RequestConfig describes one call.
type RequestConfig struct {
	Method  string
	URL     string
	Data    any
	Headers map[string]string
	Timeout time.Duration
}

// Client sends requests to the mock backend or the real API depending on the environment.
type Client struct {
	env   config.Environment
	store storage.Store
	mock  MockTransport
	http  *http.Client
	log   *zap.Logger
}

type Option func(*Client)

func WithMock(m MockTransport) Option { return func(c *Client) { c.mock = m } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

func New(env config.Environment, store storage.Store, opts ...Option) *Client {
	c := &Client{
		env:   env,
		store: store,
		http:  &http.Client{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.env.Timeout <= 0 {
		c.env.Timeout = config.DefaultTimeout
	}
	if c.env.UseMockData && c.mock == nil {
		c.log.Warn("mock data enabled without a mock transport, requests will fail",
			zap.String("environment", c.env.Name))
	}
	return c
}

func (c *Client) Get(ctx context.Context, endpoint string) (*Envelope, error) {
	return c.makeRequest(ctx, RequestConfig{Method: http.MethodGet, URL: endpoint})
}

func (c *Client) Post(ctx context.Context, endpoint string, data any) (*Envelope, error) {
	return c.makeRequest(ctx, RequestConfig{Method: http.MethodPost, URL: endpoint, Data: data})
}

func (c *Client) Put(ctx context.Context, endpoint string, data any) (*Envelope, error) {
	return c.makeRequest(ctx, RequestConfig{Method: http.MethodPut, URL: endpoint, Data: data})
}

func (c *Client) Patch(ctx context.Context, endpoint string, data any) (*Envelope, error) {
	return c.makeRequest(ctx, RequestConfig{Method: http.MethodPatch, URL: endpoint, Data: data})
}

func (c *Client) Delete(ctx context.Context, endpoint string) (*Envelope, error) {
	return c.makeRequest(ctx, RequestConfig{Method: http.MethodDelete, URL: endpoint})
}

// Do sends a fully specified request.
func (c *Client) Do(ctx context.Context, cfg RequestConfig) (*Envelope, error) {
	return c.makeRequest(ctx, cfg)
}

func (c *Client) makeRequest(ctx context.Context, cfg RequestConfig) (*Envelope, error) {
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = c.env.Timeout
	}

	header := http.Header{}
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}
	header.Set("Content-Type", "application/json")
	if token := c.bearerToken(ctx); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	var body []byte
	if cfg.Data != nil {
		raw, err := json.Marshal(cfg.Data)
		if err != nil {
			return nil, handleError(fmt.Errorf("failed to encode request body: %w", err), cfg.URL)
		}
		body = raw
	}

	var (
		resp *Envelope
		err  error
	)
	switch {
	case c.env.UseMockData && c.mock == nil:
		err = ErrNoMockTransport
	case c.env.UseMockData:
		resp, err = c.sendMock(ctx, cfg, header, body)
	default:
		resp, err = c.sendHTTP(ctx, cfg, header, body)
	}
	if err != nil {
		apiErr := handleError(err, cfg.URL)
		c.log.Debug("api request failed",
			zap.String("method", cfg.Method),
			zap.String("url", cfg.URL),
			zap.Int("status", apiErr.StatusCode),
			zap.String("error", apiErr.Message),
		)
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) bearerToken(ctx context.Context) string {
	if c.store == nil {
		return ""
	}
	token, err := c.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("failed to read auth token", zap.Error(err))
		}
		return ""
	}
	return token
}

func (c *Client) sendMock(ctx context.Context, cfg RequestConfig, header http.Header, body []byte) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := c.mock.Dispatch(ctx, mockapi.Request{
		Method: cfg.Method,
		URL:    cfg.URL,
		Body:   body,
		Header: header,
	})
	if err != nil {
		return nil, err
	}
	// round-trip through JSON so callers decode mock and real responses the same way
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mock response: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode mock response: %w", err)
	}
	return &env, nil
}

func (c *Client) sendHTTP(ctx context.Context, cfg RequestConfig, header http.Header, body []byte) (*Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, cfg.Method, c.resolve(cfg.URL), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = header

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		message := fmt.Sprintf("HTTP error! status: %d", res.StatusCode)
		if decodeErr == nil && env.Message != "" {
			message = env.Message
		}
		return nil, model.NewAPIError(message, res.StatusCode, cfg.URL)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return &env, nil
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return strings.TrimSuffix(c.env.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/")
}

// handleError normalises any failure into an *APIError.
func handleError(err error, path string) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Path == "" {
			apiErr.Path = path
		}
		return apiErr
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		apiErr = model.NewAPIError("Request timeout", http.StatusRequestTimeout, path)
	case errors.Is(err, context.Canceled):
		apiErr = model.NewAPIError("Request cancelled", 0, path)
	default:
		apiErr = model.NewAPIError(err.Error(), 0, path)
	}
	apiErr.Cause = err
	return apiErr
}
