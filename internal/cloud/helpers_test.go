// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/kbsync/internal/settings"
	"github.com/pdiddy/kbsync/pkg/types"
)

// roundTripFunc lets tests answer requests without a listening server.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(t *testing.T, endpoint, credential string) *Config {
	t.Helper()
	cfg := NewConfig(settings.NewMemoryStore(map[string]string{
		types.SettingEndpoint:   endpoint,
		types.SettingCredential: credential,
	}))
	return cfg
}

// newServerClient starts an httptest server running h and returns a client
// pointed at it with credential "abc".
func newServerClient(t *testing.T, h http.HandlerFunc, files FileStore) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(testConfig(t, ts.URL, "abc"), files,
		WithHTTPClient(ts.Client()), WithLogger(quietLogger()))
}

// newMockClient returns a client for endpoint https://x.test whose requests
// are answered by rt.
func newMockClient(t *testing.T, credential string, rt roundTripFunc) *Client {
	t.Helper()
	return New(testConfig(t, "https://x.test", credential), nil,
		WithHTTPClient(&http.Client{Transport: rt}), WithLogger(quietLogger()))
}

// fakeFiles is an in-memory FileStore. Ids absent from the map fail.
type fakeFiles map[string][]byte

func (f fakeFiles) GetFile(_ context.Context, id string) ([]byte, error) {
	data, ok := f[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}
