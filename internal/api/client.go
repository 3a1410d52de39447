package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

// TokenSource supplies the bearer token for authenticated calls. A nil or
// empty result sends the request unauthenticated.
type TokenSource func() string

// Client talks to the blast backend. All methods are safe for concurrent
// use.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	token    TokenSource
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		validate: validator.New(),
		token:    token,
	}
}

// WithHTTPClient overrides the transport, used by tests and by callers that
// need custom timeouts.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Message, e.Error, e.Detail} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Get performs a GET against path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post validates body (when it carries validate tags), sends it as JSON and
// decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	if body != nil {
		if err := c.validate.Struct(body); err != nil {
			if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
				return &ErrValidation{Field: verrs[0].Field(), Message: verrs[0].Tag()}
			}
			if _, ok := err.(*validator.InvalidValidationError); !ok {
				return &ErrValidation{Field: "(request)", Message: err.Error()}
			}
		}
	}
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Delete performs a DELETE against path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ErrUnreachable{Endpoint: path, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		_ = json.Unmarshal(raw, &ae)
		msg := ae.text()
		if msg == "" {
			msg = string(bytes.TrimSpace(raw))
		}
		return statusError(path, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func queryPath(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
