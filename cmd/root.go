// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-log/internal/clierr"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose    bool
	configPath string
	cacheDir   string
}

var globals globalOptions

var rootCmd = &cobra.Command{
	Use:   "gh-log",
	Short: "Monthly pull request metrics for the authenticated GitHub user.",
	Long: `gh-log summarizes the pull requests you created in a calendar month:
lead time, frequency, size distribution and review balance.

Results are cached per month. The current month is refreshed after 6 hours,
the previous month after 24 hours, and older months are kept indefinitely.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}

func init() {
	// Persistent flags are available to all commands.
	rootCmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "Path to config.toml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&globals.cacheDir, "cache-dir", "", "Cache directory (default: user cache dir)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "invalid arguments", err)
	})
}
