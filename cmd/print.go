package cmd

import (
	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-log/internal/printer"
)

var printOpts struct {
	monthOptions
	json bool
	csv  bool
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the month's PR metrics as text, JSON or CSV",
	Long: `Print aggregates the PRs you created in a month and writes the result to
standard output. The default is a human-readable report; --json emits the full
summary and --csv one row per visible PR in creation order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd, &printOpts.monthOptions)
		if err != nil {
			return err
		}
		summary, err := p.run(cmd.Context(), &printOpts.monthOptions)
		if err != nil {
			return err
		}

		format := printer.FormatText
		switch {
		case printOpts.json:
			format = printer.FormatJSON
		case printOpts.csv:
			format = printer.FormatCSV
		}
		return printer.Print(cmd.OutOrStdout(), summary, format)
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
	addMonthFlags(printCmd.Flags(), &printOpts.monthOptions)
	printCmd.Flags().BoolVar(&printOpts.json, "json", false, "Output JSON")
	printCmd.Flags().BoolVar(&printOpts.csv, "csv", false, "Output CSV")
	printCmd.MarkFlagsMutuallyExclusive("json", "csv")
}
