// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kbsync/internal/cloud"
)

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify the connection to the cloud knowledge service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cliConfig()
		client := newClient(cfg, nil)
		st := client.VerifyConnection(context.Background())
		if !st.Valid {
			return fmt.Errorf("connection to %s failed: %s", client.Config().Endpoint(), st.Message)
		}
		fmt.Printf("%s: %s\n", client.Config().Endpoint(), st.Message)
		return nil
	},
}

// --- upload ---

var uploadCmd = &cobra.Command{
	Use:   "upload <base-id>",
	Short: "Upload a local knowledge base to the cloud",
	Long: `Upload sends a local knowledge base, with the content of its file
items, to the cloud knowledge service. A file whose content cannot be read
is sent as its reference; the upload continues.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cliConfig()
		store, err := openLocal(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		base, err := store.GetBase(ctx, args[0])
		if err != nil {
			return err
		}

		res, err := newClient(cfg, store).Upload(ctx, *base)
		if err != nil {
			return err
		}
		return reportResult(res, "uploaded "+base.Name, cloud.ErrUpload)
	},
}

// --- list ---

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge bases stored in the cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		bases := newClient(cliConfig(), nil).List(context.Background())
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatSummaries(os.Stdout, bases, jsonOutput)
	},
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search knowledge bases stored in the cloud",
	Long: `Search queries the cloud knowledge bases. A blank query lists all
knowledge bases instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		client := newClient(cliConfig(), nil)

		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return formatSummaries(os.Stdout, client.List(context.Background()), jsonOutput)
		}

		res, err := client.Search(context.Background(), query)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(os.Stdout, res)
		}
		return formatSummaries(os.Stdout, res.Results, false)
	},
}

// --- sync ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the current state of the cloud knowledge bases",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient(cliConfig(), nil).Sync(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(os.Stdout, res)
		}
		return reportResult(res, "sync complete", cloud.ErrSync)
	},
}

// --- delete ---

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a knowledge base from the cloud",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newClient(cliConfig(), nil).Delete(context.Background(), args[0])
		if err != nil {
			return err
		}
		return reportResult(res, "deleted "+args[0], cloud.ErrDelete)
	},
}

// --- visualize ---

var visualizeCmd = &cobra.Command{
	Use:   "visualize <id>",
	Short: "Fetch the rendered visualization of a cloud knowledge base",
	Long: `Visualize fetches the server-rendered visualization of a knowledge
base as SVG (default) or JSON and writes it to stdout or --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		v, err := newClient(cliConfig(), nil).Visualization(context.Background(), args[0], cloud.Format(format))
		if err != nil {
			return err
		}

		if out == "" {
			_, err := os.Stdout.Write(v.Bytes())
			return err
		}
		if err := os.WriteFile(out, v.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing visualization: %w", err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
		return nil
	},
}

// --- shared helpers ---

// reportResult prints okMsg for a successful result. A reply with success
// false is a failure carrying the server's message, or fallback.
func reportResult(res *cloud.Result, okMsg string, fallback error) error {
	if !res.Success {
		if res.Message != "" {
			return errors.New(res.Message)
		}
		return fallback
	}
	if res.Message != "" {
		okMsg += ": " + res.Message
	}
	fmt.Println(okMsg)
	return nil
}

func formatSummaries(w io.Writer, bases []cloud.Summary, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(w, bases)
	}
	if len(bases) == 0 {
		fmt.Fprintln(w, "No knowledge bases found.")
		return nil
	}

	fmt.Fprintf(w, "%-28s  %-30s  %s\n", "ID", "Name", "Description")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, b := range bases {
		fmt.Fprintf(w, "%-28s  %-30s  %s\n", b.ID, truncate(b.Name, 30), truncate(b.Description, 28))
	}
	fmt.Fprintf(w, "\n%d knowledge bases\n", len(bases))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func init() {
	listCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("json", false, "output the raw search result as JSON")
	syncCmd.Flags().Bool("json", false, "output the raw sync result as JSON")
	visualizeCmd.Flags().String("format", "svg", "visualization format: svg or json")
	visualizeCmd.Flags().String("out", "", "write the artifact to this file instead of stdout")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(visualizeCmd)
}
