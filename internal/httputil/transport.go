// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the narrow JSON-over-HTTP transport shared by the
// remote operations: method, path, query, body, and timeout in; status and
// body bytes out. Requests are one-shot and never retried.
package httputil

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
)

// DefaultTimeout applies when a Request carries no timeout.
const DefaultTimeout = 30 * time.Second

// Request describes one remote call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// Timeout bounds the whole call, including reading the response body.
	Timeout time.Duration
}

// Response holds a successful (2xx) reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// StatusError reports a non-2xx reply. Message is the server-provided
// "message" field when the body carries one.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
}

// Transport sends Requests against a base URL. BaseURL and Header are called
// per request so configuration changes between calls take effect without
// rebuilding the transport.
type Transport struct {
	Client  *http.Client
	BaseURL func() string
	Header  func() http.Header
}

// Do executes req. Cancellation of ctx is ignored: the call runs until it
// completes or req.Timeout elapses. Values carried by ctx are preserved.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	reqURL, err := t.url(req)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if t.Header != nil {
		for k, vs := range t.Header() {
			for _, v := range vs {
				hreq.Header.Add(k, v)
			}
		}
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    ServerMessage(data),
			Body:       data,
		}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (t *Transport) url(req Request) (string, error) {
	base := ""
	if t.BaseURL != nil {
		base = strings.TrimRight(t.BaseURL(), "/")
	}
	if base == "" {
		return "", fmt.Errorf("no base URL configured")
	}
	u := base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u, nil
}

// ServerMessage extracts the "message" field from a JSON error body.
// It returns "" when the body is not JSON or has no message.
func ServerMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	return strings.TrimSpace(envelope.Message)
}
