// Package api is the TwinTrack backend HTTP client. Every response
// travels in a `{isSuccess, message, data}` envelope; the client
// unwraps it, surfaces server messages verbatim, and funnels expired
// sessions into a single callback so all call sites log out the same
// way.
package api

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

	"github.com/sirupsen/logrus"
)

// ErrSessionExpired marks a 401 or an explicit Token-Expired response.
var ErrSessionExpired = errors.New("session expired")

// Client talks to the TwinTrack backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Log        *logrus.Logger

	// TokenSource supplies the current bearer token, empty when the
	// user is not logged in.
	TokenSource func() string
	// OnSessionExpired runs once per expired call, before the error is
	// returned. Used to drop the persisted session.
	OnSessionExpired func()
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	timeout := 15 * time.Second
	return &Client{
		BaseURL:    baseURL,
		Timeout:    timeout,
		HTTPClient: &http.Client{Timeout: timeout},
		Log:        logrus.StandardLogger(),
	}
}

// APIError wraps a response the backend refused, either by status code
// or by isSuccess=false. Message carries the server's wording
// untouched.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	IsSuccess *bool           `json:"isSuccess"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) put(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	// Never mutate the client here: do runs concurrently from fan-outs.
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: c.Timeout}
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.TokenSource != nil {
		if token := c.TokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.Header.Get("Token-Expired") == "true" {
		c.log().WithField("endpoint", endpoint).Warn("session expired")
		if c.OnSessionExpired != nil {
			c.OnSessionExpired()
		}
		return ErrSessionExpired
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected response from server"}
	}
	if resp.StatusCode >= 300 || (env.IsSuccess != nil && !*env.IsSuccess) {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	data := env.Data
	if len(data) == 0 || string(data) == "null" {
		// Some endpoints skip the envelope and return the payload bare.
		if env.IsSuccess == nil {
			data = raw
		} else {
			return nil
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "unexpected response from server"}
	}
	return nil
}

// decodeList tolerates both a bare JSON array and an {items: [...]}
// page wrapper.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var page struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page.Items, nil
}

func (c *Client) log() *logrus.Logger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}
