// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kbsync/internal/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the service endpoint and API key",
	Long: `Config reads and writes the persisted service endpoint and API key.
Changes are written immediately and apply to every later invocation.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective endpoint, a masked API key, and persisted settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cliConfig()
		cfg := newConfig(c)
		fmt.Printf("endpoint: %s\n", cfg.Endpoint())
		fmt.Printf("api key:  %s\n", maskKey(cfg.Credential()))

		values, err := settings.NewDirStore(c.SettingsDir).Load()
		if err != nil {
			return err
		}
		fmt.Printf("\npersisted in %s:\n", c.SettingsDir)
		formatSettings(os.Stdout, values)
		return nil
	},
}

var configSetEndpointCmd = &cobra.Command{
	Use:   "set-endpoint <url>",
	Short: "Persist the service endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimSpace(args[0])
		if url == "" {
			return fmt.Errorf("endpoint must not be empty")
		}
		if err := newConfig(cliConfig()).SetEndpoint(url); err != nil {
			return err
		}
		fmt.Printf("endpoint set to %s\n", url)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <key>",
	Short: "Persist the API key (an empty key clears it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if err := newConfig(cliConfig()).SetCredential(key); err != nil {
			return err
		}
		if key == "" {
			fmt.Println("api key cleared")
			return nil
		}
		fmt.Printf("api key set to %s\n", maskKey(key))
		return nil
	},
}

// maskKey keeps the last four characters of key.
func maskKey(key string) string {
	switch {
	case key == "":
		return "(none)"
	case len(key) <= 4:
		return strings.Repeat("*", len(key))
	default:
		return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	}
}

// formatSettings writes persisted settings sorted by key. Values of keys
// that name a key or token are masked.
func formatSettings(w io.Writer, values map[string]string) {
	if len(values) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := values[k]
		lower := strings.ToLower(k)
		if strings.Contains(lower, "key") || strings.Contains(lower, "token") {
			v = maskKey(v)
		}
		fmt.Fprintf(w, "  %s = %s\n", k, v)
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetEndpointCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}
