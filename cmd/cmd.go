// Package cmd defines the command-line interface for barrace.
package cmd

import (
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(keyframesCmd)
	rootCmd.AddCommand(rollupCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("range", "r", contract.DefaultRange, "Number of bars visible in each frame")
	rootCmd.PersistentFlags().IntP("interpolations", "i", contract.DefaultInterpolations, "Number of frames per interval between consecutive dates")
	rootCmd.PersistentFlags().String("date-column", schema.DefaultDateColumn, "Header of the date column")
	rootCmd.PersistentFlags().String("name-column", schema.DefaultNameColumn, "Header of the name column")
	rootCmd.PersistentFlags().String("value-column", schema.DefaultValueColumn, "Header of the value column")
	rootCmd.PersistentFlags().String("date-layouts", "", "Comma-separated Go time layouts tried in order when parsing dates")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL, "How long a downloaded source stays fresh (e.g., '1 hour', '2d')")
	rootCmd.PersistentFlags().Int("retries", contract.DefaultRetries, "Retry attempts for transient HTTP failures")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout, "Timeout for a single HTTP request")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for values in text output")
	rootCmd.PersistentFlags().String("date-format", contract.DefaultDateFormat, "Go time layout for keyframe dates in text output")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details such as fetch and stage timings")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of keyframesCmd to Viper
	keyframesCmd.Flags().Bool("show-overflow", false, "Also print records ranked at or beyond the cutoff")
	if err := viper.BindPFlags(keyframesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding keyframes flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
