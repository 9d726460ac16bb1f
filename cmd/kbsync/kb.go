// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kbsync/pkg/types"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage local knowledge bases (import, list, show, add items, export)",
	Long: `Kb manages the local knowledge base store. Knowledge bases hold an
ordered list of file, URL, and note items and are uploaded with "upload".`,
}

// --- import subcommand ---

var kbImportCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Create or replace a local knowledge base from a YAML manifest",
	Long: `Import reads a YAML manifest naming the knowledge base, its embedding
model and dimensions, and its items. File items give a path relative to the
manifest; their content is copied into the local store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cliConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		base, err := store.ImportYAML(context.Background(), f, filepath.Dir(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("imported %s (%s, %d items)\n", base.Name, base.ID, len(base.Items))
		return nil
	},
}

// --- list subcommand ---

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local knowledge bases",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cliConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		bases, err := store.ListBases(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(os.Stdout, bases)
		}
		if len(bases) == 0 {
			fmt.Println("No local knowledge bases.")
			return nil
		}

		fmt.Printf("%-28s  %-30s  %-24s  %5s  %s\n", "ID", "Name", "Model", "Dims", "Items")
		fmt.Println(strings.Repeat("-", 100))
		for _, b := range bases {
			fmt.Printf("%-28s  %-30s  %-24s  %5d  %d\n",
				b.ID, truncate(b.Name, 30), truncate(b.Model, 24), b.Dimensions, b.Items)
		}
		return nil
	},
}

// --- show / export subcommands ---

var kbShowCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"export"},
	Short:   "Print a local knowledge base as YAML",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cliConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		return store.ExportYAML(context.Background(), args[0], os.Stdout)
	},
}

// --- add-* subcommands ---

var kbAddNoteCmd = &cobra.Command{
	Use:   "add-note <base-id> <text...>",
	Short: "Append a note to a local knowledge base",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addItem(args[0], types.Item{Type: types.ItemNote, Content: strings.Join(args[1:], " ")})
	},
}

var kbAddURLCmd = &cobra.Command{
	Use:   "add-url <base-id> <url>",
	Short: "Append a URL to a local knowledge base",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addItem(args[0], types.Item{Type: types.ItemURL, Content: args[1]})
	},
}

var kbAddFileCmd = &cobra.Command{
	Use:   "add-file <base-id> <path>",
	Short: "Copy a file into the local store and append it to a knowledge base",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cliConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		item, err := store.AddFile(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("added file %s as %s\n", item.File.Name, item.ID)
		return nil
	},
}

func addItem(baseID string, item types.Item) error {
	store, err := openLocal(cliConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AddItem(context.Background(), baseID, &item); err != nil {
		return err
	}
	fmt.Printf("added %s %s\n", item.Type, item.ID)
	return nil
}

// --- remove subcommand ---

var kbRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a local knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cliConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteBase(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

func init() {
	kbListCmd.Flags().Bool("json", false, "output results as JSON")

	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbShowCmd)
	kbCmd.AddCommand(kbAddNoteCmd)
	kbCmd.AddCommand(kbAddURLCmd)
	kbCmd.AddCommand(kbAddFileCmd)
	kbCmd.AddCommand(kbRemoveCmd)

	rootCmd.AddCommand(kbCmd)
}
