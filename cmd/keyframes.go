package cmd

import (
	"github.com/huangsam/barrace/core"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/spf13/cobra"
)

// keyframesCmd runs the full pipeline.
var keyframesCmd = &cobra.Command{
	Use:   "keyframes [source]",
	Short: "Synthesize ranked, interpolated keyframes from a CSV source.",
	Long: `Roll up a CSV of (date, name, value) rows and synthesize the keyframes of a bar chart race.

Between every pair of consecutive dates, values are linearly interpolated
over --interpolations frames. Every frame ranks all names by value; names
ranked at or beyond --range are parked at the cutoff rank so they can slide
in and out of view. Each record links to the same name's record in the
previous and next frame.

Examples:
  # Ten bars, ten frames per year
  barrace keyframes brands.csv

  # A smoother race showing the top 5
  barrace keyframes brands.csv --range 5 --interpolations 30

  # Fetch over HTTP and export for a renderer
  barrace keyframes https://example.com/brands.csv --output json --output-file race.json

  # Custom column names
  barrace keyframes gdp.csv --date-column year --name-column country --value-column gdp`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteKeyframes(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build keyframes", err)
		}
	},
}
