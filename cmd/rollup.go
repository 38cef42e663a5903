package cmd

import (
	"github.com/huangsam/barrace/core"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/spf13/cobra"
)

// rollupCmd prints the per-date rollup of a source.
var rollupCmd = &cobra.Command{
	Use:   "rollup [source]",
	Short: "Group a CSV source by date without building keyframes.",
	Long: `Group the rows of a CSV source by date and print the value of every name at each date.

Repeated (date, name) rows keep the first value seen. Names absent on a
date are shown as zero. Useful for checking how a source parses before
building keyframes.

Examples:
  barrace rollup brands.csv
  barrace rollup brands.csv --output csv --output-file rollup.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRollup(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot roll up source", err)
		}
	},
}
