// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kbsync/internal/settings"
	"github.com/pdiddy/kbsync/pkg/types"
)

func TestConfigEndpointRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "settings")

	cfg := NewConfig(settings.NewDirStore(dir))
	require.NoError(t, cfg.SetEndpoint("https://kb.example.com"))
	assert.Equal(t, "https://kb.example.com", cfg.Endpoint())

	// A fresh Config re-reads persisted storage.
	fresh := NewConfig(settings.NewDirStore(dir))
	assert.Equal(t, "https://kb.example.com", fresh.Endpoint())
}

func TestConfigCredentialLazyLoad(t *testing.T) {
	store := settings.NewMemoryStore(map[string]string{types.SettingCredential: "persisted-key"})

	cfg := NewConfig(store)
	assert.Equal(t, "persisted-key", cfg.Credential())
}

func TestConfigSeesExternalUpdateWhenUnset(t *testing.T) {
	store := settings.NewMemoryStore(nil)
	cfg := NewConfig(store)
	assert.Equal(t, "", cfg.Credential())

	require.NoError(t, store.Set(types.SettingCredential, "late-key"))
	assert.Equal(t, "late-key", cfg.Credential())
}

func TestConfigSetterWritesThrough(t *testing.T) {
	store := settings.NewMemoryStore(nil)
	cfg := NewConfig(store)

	require.NoError(t, cfg.SetCredential("abc"))
	require.NoError(t, cfg.SetEndpoint("https://x.test"))

	v, ok := store.Get(types.SettingCredential)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	v, ok = store.Get(types.SettingEndpoint)
	assert.True(t, ok)
	assert.Equal(t, "https://x.test", v)
}

func TestConfigDefaultEndpoint(t *testing.T) {
	assert.Equal(t, types.DefaultEndpoint, NewConfig(nil).Endpoint())
}

func TestConfigHeaders(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		wantAuth   string
	}{
		{"with credential", "abc", "Bearer abc"},
		{"without credential", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testConfig(t, "https://x.test", tt.credential).Headers()
			assert.Equal(t, "application/json", h.Get("Content-Type"))
			assert.Equal(t, tt.wantAuth, h.Get("Authorization"))
			if tt.wantAuth == "" {
				_, present := h[http.CanonicalHeaderKey("Authorization")]
				assert.False(t, present, "Authorization header should be omitted")
			}
		})
	}
}

func TestConfigConcurrentAccess(t *testing.T) {
	cfg := NewConfig(settings.NewMemoryStore(nil))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = cfg.SetCredential("k")
		}()
		go func() {
			defer wg.Done()
			_ = cfg.Headers()
		}()
	}
	wg.Wait()
	assert.Equal(t, "k", cfg.Credential())
}
