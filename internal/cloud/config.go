// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"net/http"
	"sync"

	"github.com/pdiddy/kbsync/internal/settings"
	"github.com/pdiddy/kbsync/pkg/types"
)

// Config holds the remote endpoint and bearer credential. Values set on the
// Config are written through to the backing store immediately. Getters read
// the in-memory value and fall back to the store when it is absent, so a
// fresh Config sees previously persisted values without a load step.
type Config struct {
	mu         sync.Mutex
	store      settings.Store
	endpoint   string
	credential string
}

// NewConfig returns a Config backed by store. A nil store keeps values in
// memory only.
func NewConfig(store settings.Store) *Config {
	if store == nil {
		store = settings.NewMemoryStore(nil)
	}
	return &Config{store: store}
}

// Endpoint returns the configured base URL, or types.DefaultEndpoint.
func (c *Config) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.endpoint == "" {
		c.endpoint, _ = c.store.Get(types.SettingEndpoint)
	}
	if c.endpoint == "" {
		return types.DefaultEndpoint
	}
	return c.endpoint
}

// SetEndpoint updates and persists the base URL.
func (c *Config) SetEndpoint(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = url
	return c.store.Set(types.SettingEndpoint, url)
}

// Credential returns the bearer credential, or "" when none is configured.
func (c *Config) Credential() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.credential == "" {
		c.credential, _ = c.store.Get(types.SettingCredential)
	}
	return c.credential
}

// SetCredential updates and persists the bearer credential.
func (c *Config) SetCredential(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = key
	return c.store.Set(types.SettingCredential, key)
}

// Headers returns the headers sent with every request. Authorization is
// omitted when no credential is configured; the server decides whether an
// unauthenticated request is acceptable.
func (c *Config) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if key := c.Credential(); key != "" {
		h.Set("Authorization", "Bearer "+key)
	}
	return h
}
