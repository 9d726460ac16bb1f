// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Settings keys shared by the cloud client and the CLI.
const (
	SettingEndpoint   = "zeaber_api_url"
	SettingCredential = "zeaber_api_key"
)

// DefaultEndpoint is used when no endpoint has been configured.
const DefaultEndpoint = "https://api.zeaber.com"

// LocalConfig holds settings for the local knowledge base store.
type LocalConfig struct {
	// DBPath is the SQLite database file (e.g. "~/.config/kbsync/kbsync.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// CLIConfig groups the settings the CLI resolves from flags, env, and the
// optional kbsync.yaml config file.
type CLIConfig struct {
	// SettingsDir holds one file per persisted setting (endpoint, API key).
	SettingsDir string `json:"settings_dir" yaml:"settings_dir"`

	// Endpoint overrides the persisted endpoint for a single invocation.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey overrides the persisted credential for a single invocation.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// LogLevel is a logrus level name (default "warn").
	LogLevel string `json:"log_level" yaml:"log_level"`

	Local LocalConfig `json:"local" yaml:"local"`
}
