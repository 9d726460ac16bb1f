package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kbsync/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kbsync build, Go runtime, and default service endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		writeVersion(os.Stdout, version, short)
		return nil
	},
}

// writeVersion prints the build stamp set by the mage Build target. With
// short only the bare version is written.
func writeVersion(w io.Writer, v string, short bool) {
	if v == "" {
		v = "dev"
	}
	if short {
		fmt.Fprintln(w, v)
		return
	}
	fmt.Fprintf(w, "kbsync %s\n", v)
	fmt.Fprintf(w, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  endpoint: %s (default)\n", types.DefaultEndpoint)
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
	rootCmd.AddCommand(versionCmd)
}
