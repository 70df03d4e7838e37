package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-log/internal/tui"
)

var viewOpts monthOptions

// runTUI starts the interactive dashboard. Tests replace it.
var runTUI = tui.Run

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the month's PR metrics interactively",
	Long: `View opens a terminal dashboard for the month. Press s for the summary,
d for details by week (d again groups by repository), t for all PRs by lead
time, and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, &viewOpts)
		if err != nil {
			return err
		}
		if p.store.Get(p.month, viewOpts.force) == nil {
			fprintf(cmd.ErrOrStderr(), "Fetching PRs for %s...\n", p.month)
		}
		summary, err := p.run(cmd.Context(), &viewOpts)
		if err != nil {
			return err
		}
		return runTUI(summary)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addMonthFlags(viewCmd.Flags(), &viewOpts)
}
