// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cloud is the client for the remote knowledge base service. It
// uploads local knowledge bases, lists, searches, syncs, and deletes remote
// ones, fetches rendered visualizations, and checks connectivity.
//
// Every operation is a single request/response with a fixed timeout. Failures
// are returned as *Error values, except List, which reports failures as an
// empty result, and VerifyConnection, which reports them in its Status.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/kbsync/internal/httputil"
	"github.com/pdiddy/kbsync/pkg/types"
)

const (
	statusPath = "/api/v1/status"
	basePath   = "/api/v1/knowledge-base"
)

// Per-operation timeouts. Declared as vars so tests can shorten them.
var (
	statusTimeout        = 10 * time.Second
	uploadTimeout        = 60 * time.Second
	listTimeout          = 15 * time.Second
	searchTimeout        = 15 * time.Second
	syncTimeout          = 30 * time.Second
	deleteTimeout        = 15 * time.Second
	visualizationTimeout = 30 * time.Second
)

// Client issues remote operations using the endpoint and credential held by
// its Config. It keeps no state between calls and is safe for concurrent use.
type Client struct {
	cfg       *Config
	files     FileStore
	log       logrus.FieldLogger
	transport *httputil.Transport
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.transport.Client = hc }
}

// WithLogger sets the logger used for failure reports.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a Client that reads configuration from cfg and resolves file
// items through files (which may be nil when no files are uploaded).
func New(cfg *Config, files FileStore, opts ...Option) *Client {
	if cfg == nil {
		cfg = NewConfig(nil)
	}
	c := &Client{
		cfg:   cfg,
		files: files,
		log:   logrus.StandardLogger(),
	}
	c.transport = &httputil.Transport{
		Client:  http.DefaultClient,
		BaseURL: cfg.Endpoint,
		Header:  cfg.Headers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client's configuration.
func (c *Client) Config() *Config { return c.cfg }

// Status is the outcome of VerifyConnection.
type Status struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// VerifyConnection checks the service health endpoint. It never returns an
// error: Valid is true only for an HTTP 200 reply, and Message carries the
// server's error message or the transport error text otherwise.
func (c *Client) VerifyConnection(ctx context.Context) Status {
	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodGet,
		Path:    statusPath,
		Timeout: statusTimeout,
	})
	if err != nil {
		e := c.fail(KindConnection, err)
		return Status{Valid: false, Message: e.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return Status{Valid: false, Message: fmt.Sprintf("server returned HTTP %d", resp.StatusCode)}
	}
	return Status{Valid: true, Message: "Connection successful"}
}

// Upload sends base to the service. File items are resolved through the
// client's FileStore; unresolved files are sent as their reference.
func (c *Client) Upload(ctx context.Context, base types.KnowledgeBase) (*Result, error) {
	payload := BuildPayload(ctx, base, c.files, c.log)

	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodPost,
		Path:    basePath + "/upload",
		Body:    payload,
		Timeout: uploadTimeout,
	})
	if err != nil {
		return nil, c.fail(KindUpload, err)
	}
	r, err := decodeResult(resp.Body)
	if err != nil {
		return nil, c.fail(KindUpload, err)
	}
	return r, nil
}

// List returns the remote knowledge bases. Failures are logged and reported
// as an empty list; List never returns an error.
func (c *Client) List(ctx context.Context) []Summary {
	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodGet,
		Path:    basePath + "/list",
		Timeout: listTimeout,
	})
	if err != nil {
		c.logFailure("list", err)
		return []Summary{}
	}
	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		c.logFailure("list", err)
		return []Summary{}
	}

	bases := make([]Summary, 0, len(envelope.Data))
	for i, raw := range envelope.Data {
		var s Summary
		if err := json.Unmarshal(raw, &s); err != nil {
			c.log.WithFields(logrus.Fields{"op": "list", "index": i}).WithError(err).Warn("skipping malformed knowledge base entry")
			continue
		}
		bases = append(bases, s)
	}
	return bases
}

// Search queries the remote knowledge bases. Callers with a blank query
// should call List instead.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodGet,
		Path:    basePath + "/search",
		Query:   url.Values{"query": {query}},
		Timeout: searchTimeout,
	})
	if err != nil {
		return nil, c.fail(KindSearch, err)
	}
	r, err := decodeSearchResult(resp.Body)
	if err != nil {
		return nil, c.fail(KindSearch, err)
	}
	return r, nil
}

// Sync pulls the authoritative remote state. It does not merge anything
// locally.
func (c *Client) Sync(ctx context.Context) (*Result, error) {
	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodGet,
		Path:    basePath + "/sync",
		Timeout: syncTimeout,
	})
	if err != nil {
		return nil, c.fail(KindSync, err)
	}
	r, err := decodeResult(resp.Body)
	if err != nil {
		return nil, c.fail(KindSync, err)
	}
	return r, nil
}

// Delete removes the remote knowledge base id. Repeated deletes get whatever
// the server replies.
func (c *Client) Delete(ctx context.Context, id string) (*Result, error) {
	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodDelete,
		Path:    basePath + "/" + url.PathEscape(id),
		Timeout: deleteTimeout,
	})
	if err != nil {
		return nil, c.fail(KindDelete, err)
	}
	r, err := decodeResult(resp.Body)
	if err != nil {
		return nil, c.fail(KindDelete, err)
	}
	return r, nil
}

// Visualization fetches the rendered artifact for knowledge base id. An
// empty format means FormatSVG. It has no side effects and may be called
// again to refresh.
func (c *Client) Visualization(ctx context.Context, id string, format Format) (*Visualization, error) {
	if format == "" {
		format = FormatSVG
	}
	if format != FormatSVG && format != FormatJSON {
		return nil, c.fail(KindVisualization, fmt.Errorf("unsupported visualization format %q", format))
	}

	resp, err := c.transport.Do(ctx, httputil.Request{
		Method:  http.MethodGet,
		Path:    basePath + "/" + url.PathEscape(id) + "/visualization",
		Query:   url.Values{"format": {string(format)}},
		Timeout: visualizationTimeout,
	})
	if err != nil {
		return nil, c.fail(KindVisualization, err)
	}

	v := &Visualization{Format: format}
	if format == FormatSVG {
		v.SVG = string(resp.Body)
		return v, nil
	}
	var raw json.RawMessage
	if err := resp.DecodeJSON(&raw); err != nil {
		return nil, c.fail(KindVisualization, err)
	}
	v.JSON = raw
	return v, nil
}

func (c *Client) fail(kind Kind, cause error) *Error {
	e := newError(kind, cause)
	c.logFailure(string(kind), e)
	return e
}

func (c *Client) logFailure(op string, err error) {
	fields := logrus.Fields{"op": op, "endpoint": c.cfg.Endpoint()}
	var se *httputil.StatusError
	if errors.As(err, &se) {
		fields["status"] = se.StatusCode
	}
	c.log.WithFields(fields).WithError(err).Warn("remote operation failed")
}
