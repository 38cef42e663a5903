package contract

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/barrace/schema"
)

// Default values for configuration.
const (
	DefaultRange          = 10
	DefaultInterpolations = 10
	MaxInterpolations     = 1000
	DefaultPrecision      = 0
	MaxPrecision          = 4
	DefaultRetries        = 3
	DefaultCacheTTL       = "1 hour"
	DefaultTimeout        = "30s"
)

// DefaultDateFormat is the layout used for keyframe dates in text output.
// Only the year is shown, matching the ticker of a classic bar chart race.
const DefaultDateFormat = "2006"

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for keyframe synthesis.
// This struct remains the "final, validated" config.
type Config struct {
	Source     string
	SourceKind schema.SourceKind

	Range          int // display cutoff
	Interpolations int // frames per interval

	DateColumn  string
	NameColumn  string
	ValueColumn string
	DateLayouts []string

	CacheTTL time.Duration
	Retries  int
	Timeout  time.Duration

	Output       schema.OutputMode
	OutputFile   string
	Precision    int
	DateFormat   string
	ShowOverflow bool
	Width        int // Terminal width override (0 = auto-detect)
	UseColors    bool
	Verbose      bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SourceStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Range          int    `mapstructure:"range"`
	Interpolations int    `mapstructure:"interpolations"`
	DateColumn     string `mapstructure:"date-column"`
	NameColumn     string `mapstructure:"name-column"`
	ValueColumn    string `mapstructure:"value-column"`
	DateLayouts    string `mapstructure:"date-layouts"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	Retries        int    `mapstructure:"retries"`
	Timeout        string `mapstructure:"timeout"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	DateFormat     string `mapstructure:"date-format"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`

	// --- Fields from keyframesCmd.Flags() ---
	ShowOverflow bool `mapstructure:"show-overflow"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.DateLayouts = slices.Clone(c.DateLayouts)
	return &clone
}

// CloneWithSource creates a copy of the Config pointed at another source.
func (c *Config) CloneWithSource(source string) *Config {
	clone := c.Clone()
	clone.Source = source
	clone.SourceKind = DetectSourceKind(source)
	return clone
}

// Params returns the parameters worth recording alongside a run.
func (c *Config) Params() map[string]any {
	params := map[string]any{
		"range":          c.Range,
		"interpolations": c.Interpolations,
		"date_column":    c.DateColumn,
		"name_column":    c.NameColumn,
		"value_column":   c.ValueColumn,
		"source_kind":    string(c.SourceKind),
	}
	if len(c.DateLayouts) > 0 && !slices.Equal(c.DateLayouts, schema.DefaultDateLayouts) {
		params["date_layouts"] = slices.Clone(c.DateLayouts)
	}
	return params
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSourceSettings(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateSynthesisParams checks the two numeric parameters of keyframe synthesis.
func ValidateSynthesisParams(rangeLimit, interpolations int) error {
	if rangeLimit < 0 {
		return fmt.Errorf("range must not be negative (received %d)", rangeLimit)
	}
	if interpolations < 1 || interpolations > MaxInterpolations {
		return fmt.Errorf("interpolations must be between 1 and %d (received %d)", MaxInterpolations, interpolations)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Run Backend Validation ---
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("run-db-connect: %w", err)
	}

	// Cache and run tracking must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the synthesis and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.ShowOverflow = input.ShowOverflow
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	cfg.DateFormat = input.DateFormat
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}

	// Parse color flag
	colorStr := input.Color
	if colorStr == "" {
		colorStr = "yes"
	}
	colors, err := ParseBoolString(colorStr)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Range and Interpolations Validation ---
	if err := ValidateSynthesisParams(input.Range, input.Interpolations); err != nil {
		return err
	}
	cfg.Range = input.Range
	cfg.Interpolations = input.Interpolations

	// --- 2. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	return nil
}

// processSourceSettings handles the source location, column names and fetch tuning.
func processSourceSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.Source = strings.TrimSpace(input.SourceStr)
	cfg.SourceKind = DetectSourceKind(cfg.Source)

	cfg.DateColumn = orDefault(input.DateColumn, schema.DefaultDateColumn)
	cfg.NameColumn = orDefault(input.NameColumn, schema.DefaultNameColumn)
	cfg.ValueColumn = orDefault(input.ValueColumn, schema.DefaultValueColumn)
	if cfg.DateColumn == cfg.NameColumn || cfg.DateColumn == cfg.ValueColumn || cfg.NameColumn == cfg.ValueColumn {
		return fmt.Errorf("date, name and value columns must be distinct (got %q, %q, %q)", cfg.DateColumn, cfg.NameColumn, cfg.ValueColumn)
	}

	cfg.DateLayouts = schema.DefaultDateLayouts
	if input.DateLayouts != "" {
		var layouts []string
		for part := range strings.SplitSeq(input.DateLayouts, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				layouts = append(layouts, trimmed)
			}
		}
		if len(layouts) > 0 {
			cfg.DateLayouts = layouts
		}
	}

	ttl, err := ParseLookbackDuration(orDefault(input.CacheTTL, DefaultCacheTTL))
	if err != nil {
		return fmt.Errorf("invalid cache-ttl: %w", err)
	}
	cfg.CacheTTL = ttl

	timeout, err := ParseLookbackDuration(orDefault(input.Timeout, DefaultTimeout))
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	cfg.Timeout = timeout

	if input.Retries < 0 {
		return fmt.Errorf("retries cannot be negative (received %d)", input.Retries)
	}
	cfg.Retries = input.Retries
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// DetectSourceKind reports whether source is a URL or a local file.
func DetectSourceKind(source string) schema.SourceKind {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return schema.HTTPSource
	}
	return schema.FileSource
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
