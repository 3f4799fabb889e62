// Package apiclient is the portal's typed client for the CareQuo REST API.
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
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
)

// TokenSource yields the bearer token for the next request; "" sends none.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// bearer attaches the current token to every outgoing request.
type bearer struct {
	base http.RoundTripper
	src  TokenSource
}

func (b *bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := ""
	if b.src != nil {
		tok = b.src.Token()
	}
	if tok == "" {
		return b.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return b.base.RoundTrip(r)
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	base       http.RoundTripper
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds an anonymous client. Use As to bind it to a session.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return newClient(strings.TrimRight(baseURL, "/"), timeout, http.DefaultTransport, nil, logger)
}

func newClient(baseURL string, timeout time.Duration, base http.RoundTripper, src TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		base:    base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearer{base: base, src: src},
		},
		logger: logger,
	}
}

// As returns a client whose requests carry src's token. The transport is shared.
func (c *Client) As(src TokenSource) *Client {
	return newClient(c.baseURL, c.timeout, c.base, src, c.logger)
}

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// send performs one round trip and returns the raw body of a 2xx response.
// Failures are never retried.
func (c *Client) send(ctx context.Context, method, path string, in any) ([]byte, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return nil, apperr.FromStatus(resp.StatusCode, eb.Error, eb.Detail)
	}
	return raw, nil
}

// call unwraps the {"status","data"} envelope into out.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	raw, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("decode response: missing data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// transportError classifies a failed round trip. Cancellation by the caller is
// passed through untouched so that abandoned views can tell it apart.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.New(apperr.ErrTimeout, "request timed out")
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return apperr.New(apperr.ErrTimeout, "request timed out")
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	return apperr.New(apperr.ErrNetwork, "backend unreachable: %v", err)
}
