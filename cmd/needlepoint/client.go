package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// client is a thin HTTP client against a running needlepointd server,
// mirroring the shape of the original Rust CLI's reqwest-based client
// talking to the same HTTP API rather than embedding the engine.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(port int) *client {
	return &client{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d/api", port),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// apiError is the {error: string} body every non-2xx response carries.
type apiError struct {
	Error string `json:"error"`
}

func (c *client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting needlepointd at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *client) get(path string, out any) error        { return c.do(http.MethodGet, path, nil, out) }
func (c *client) post(path string, body, out any) error { return c.do(http.MethodPost, path, body, out) }
func (c *client) put(path string, body, out any) error  { return c.do(http.MethodPut, path, body, out) }
func (c *client) delete(path string, out any) error     { return c.do(http.MethodDelete, path, nil, out) }
