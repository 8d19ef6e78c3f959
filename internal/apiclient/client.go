package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	webModels "energydash/internal/web/models"
)

// APIError is returned for every non-2xx response
type APIError struct {
	webModels.ErrorBody
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api error %d %s: %s (%s)", e.Status, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Client talks to the dashboard JSON API
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
}

type Option func(*Client)

// WithHTTPClient sends requests through a copy of hc. A nil hc keeps the
// default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request, whatever client is in use
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q needs a scheme and host", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.http
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc
	return c, nil
}

func (c *Client) Get(ctx context.Context, path string) (*webModels.SuccessResponse, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body interface{}) (*webModels.SuccessResponse, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body interface{}) (*webModels.SuccessResponse, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*webModels.SuccessResponse, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*webModels.SuccessResponse, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*webModels.SuccessResponse, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", path, err)
	}
	target := c.baseURL.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp, raw)
	}

	var env webModels.SuccessResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &env, nil
}

// decodeError prefers the server's error envelope and falls back to the
// status line
func decodeError(resp *http.Response, raw []byte) *APIError {
	var env webModels.ErrorResponse
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Status != 0 {
		return &APIError{ErrorBody: env.Error}
	}
	text := http.StatusText(resp.StatusCode)
	return &APIError{ErrorBody: webModels.ErrorBody{
		Code:    strings.ToUpper(strings.ReplaceAll(text, " ", "_")),
		Status:  resp.StatusCode,
		Message: "API Error: " + text,
		Details: strings.TrimSpace(string(raw)),
	}}
}

func decodeData[T any](env *webModels.SuccessResponse, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decoding data: %w", err)
	}
	return out, nil
}

func GetData[T any](ctx context.Context, c *Client, path string) (T, error) {
	env, err := c.Get(ctx, path)
	return decodeData[T](env, err)
}

func PostData[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	env, err := c.Post(ctx, path, body)
	return decodeData[T](env, err)
}

func PutData[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	env, err := c.Put(ctx, path, body)
	return decodeData[T](env, err)
}

func PatchData[T any](ctx context.Context, c *Client, path string, body interface{}) (T, error) {
	env, err := c.Patch(ctx, path, body)
	return decodeData[T](env, err)
}

func DeleteData[T any](ctx context.Context, c *Client, path string) (T, error) {
	env, err := c.Delete(ctx, path)
	return decodeData[T](env, err)
}
