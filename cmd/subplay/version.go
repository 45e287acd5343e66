package main

import (
	"fmt"
	"runtime"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.revision=...".
var (
	version  = "dev"
	revision = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	// Version must work without a readable config.
	PersistentPreRun: func(*cobra.Command, []string) {},
	Run: func(cmd *cobra.Command, _ []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			return
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "subplay %s (%s) %s/%s\n", version, revision, runtime.GOOS, runtime.GOARCH)
	},
}
