// Package client calls a running function over HTTP.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request describes one call. Data is only sent when Method is POST,
// matching what the runtime reads.
type Request struct {
	Method string
	Data   []byte

	EventID        string
	EventType      string
	EventTime      string
	EventNamespace string
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

type Client struct {
	*Options
}

func NewClient(opts ...Option) *Client {
	return &Client{
		Options: NewOptions(opts...),
	}
}

// Invoke calls the function served at BaseURL.
func (c *Client) Invoke(ctx context.Context, r Request) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodPost
	}

	var body []byte
	if method == http.MethodPost {
		body = r.Data
		if body == nil {
			body = []byte{}
		}
	}

	headers := map[string]string{}
	for key, value := range map[string]string{
		"event-id":        r.EventID,
		"event-type":      r.EventType,
		"event-time":      r.EventTime,
		"event-namespace": r.EventNamespace,
	} {
		if value != "" {
			headers[key] = value
		}
	}

	return c.Do(ctx, method, "/", body, headers)
}

// Healthz probes the liveness endpoint and fails unless it answers OK.
func (c *Client) Healthz(ctx context.Context) error {
	resp, err := c.Do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthz: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// Do sends one request; headers override the default ones.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) (*Response, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path

	timeout := c.DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timeout: %w", err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}, nil
}
