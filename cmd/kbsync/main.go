// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kbsync CLI. It manages a local
// knowledge base store and synchronizes it with the remote knowledge
// service.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kbsync/internal/cloud"
	"github.com/pdiddy/kbsync/internal/localkb"
	"github.com/pdiddy/kbsync/internal/settings"
	"github.com/pdiddy/kbsync/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the kbsync CLI.
var rootCmd = &cobra.Command{
	Use:   "kbsync",
	Short: "Synchronize local knowledge bases with the cloud knowledge service",
	Long: `kbsync keeps a local store of knowledge bases (files, URLs, and notes)
and pushes them to, or pulls them from, the cloud knowledge service.

Use "kb" subcommands to build local knowledge bases, "config" to set the
service endpoint and API key, and upload, list, search, sync, delete, and
visualize to work with the remote service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log_level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	home := configHome()
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./kbsync.yaml or ~/.config/kbsync/kbsync.yaml)")
	pf.String("settings-dir", filepath.Join(home, "settings"), "directory holding the persisted endpoint and API key")
	pf.String("db", filepath.Join(home, "kbsync.db"), "local knowledge base database")
	pf.String("endpoint", "", "service endpoint for this invocation (not persisted)")
	pf.String("api-key", "", "API key for this invocation (not persisted)")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	for key, flag := range map[string]string{
		"settings_dir": "settings-dir",
		"db":           "db",
		"endpoint":     "endpoint",
		"api_key":      "api-key",
		"log_level":    "log-level",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kbsync"
	}
	return filepath.Join(home, ".config", "kbsync")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kbsync")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(configHome())
	}

	viper.SetEnvPrefix("KBSYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetLevel(lvl)
	return nil
}

// cliConfig resolves flags, environment, and config file into a CLIConfig.
func cliConfig() types.CLIConfig {
	return types.CLIConfig{
		SettingsDir: viper.GetString("settings_dir"),
		Endpoint:    viper.GetString("endpoint"),
		APIKey:      viper.GetString("api_key"),
		LogLevel:    viper.GetString("log_level"),
		Local:       types.LocalConfig{DBPath: viper.GetString("db")},
	}
}

// newConfig returns the client configuration: persisted settings with any
// per-invocation overrides layered on top.
func newConfig(cfg types.CLIConfig) *cloud.Config {
	store := settings.NewOverlay(settings.NewDirStore(cfg.SettingsDir), map[string]string{
		types.SettingEndpoint:   cfg.Endpoint,
		types.SettingCredential: cfg.APIKey,
	})
	return cloud.NewConfig(store)
}

// openLocal opens the local knowledge base store.
func openLocal(cfg types.CLIConfig) (*localkb.Store, error) {
	return localkb.NewStore(cfg.Local)
}

// newClient returns a cloud client. files may be nil for operations that
// never upload.
func newClient(cfg types.CLIConfig, files cloud.FileStore) *cloud.Client {
	return cloud.New(newConfig(cfg), files, cloud.WithLogger(logrus.StandardLogger()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
