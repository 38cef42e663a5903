package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/barrace/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input that passes validation; tests tweak one field at a time.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		SourceStr:      "data/brands.csv",
		Range:          DefaultRange,
		Interpolations: DefaultInterpolations,
		Output:         "text",
		Precision:      DefaultPrecision,
		CacheTTL:       DefaultCacheTTL,
		Timeout:        DefaultTimeout,
		Retries:        DefaultRetries,
		CacheBackend:   "sqlite",
		Color:          "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "zero range hides every bar", mutate: func(in *ConfigRawInput) { in.Range = 0 }},
		{name: "negative range", mutate: func(in *ConfigRawInput) { in.Range = -1 }, expectError: true},
		{name: "range wider than any dataset", mutate: func(in *ConfigRawInput) { in.Range = 50000 }},
		{name: "zero interpolations", mutate: func(in *ConfigRawInput) { in.Interpolations = 0 }, expectError: true},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: true},
		{name: "parquet without file", mutate: func(in *ConfigRawInput) { in.Output = "parquet" }, expectError: true},
		{name: "parquet with file", mutate: func(in *ConfigRawInput) { in.Output = "parquet"; in.OutputFile = "out.parquet" }},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = MaxPrecision + 1 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "invalid cache ttl", mutate: func(in *ConfigRawInput) { in.CacheTTL = "soon" }, expectError: true},
		{name: "negative retries", mutate: func(in *ConfigRawInput) { in.Retries = -2 }, expectError: true},
		{name: "duplicate columns", mutate: func(in *ConfigRawInput) { in.NameColumn = "date" }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "invalid run backend", mutate: func(in *ConfigRawInput) { in.RunBackend = "oracle" }, expectError: true},
		{
			name: "run and cache share sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.RunBackend = "sqlite"
				in.CacheDBConnect = filepath.Join("tmp", "same.db")
				in.RunDBConnect = filepath.Join("tmp", "same.db")
			},
			expectError: true,
		},
		{name: "separate sqlite defaults", mutate: func(in *ConfigRawInput) { in.RunBackend = "sqlite" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	input := validInput()
	input.Output = ""
	input.CacheBackend = ""
	input.CacheTTL = ""
	input.Timeout = ""
	input.Color = ""

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, "data/brands.csv", cfg.Source)
	assert.Equal(t, schema.FileSource, cfg.SourceKind)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.DatabaseBackend(""), cfg.RunBackend)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultDateFormat, cfg.DateFormat)
	assert.Equal(t, schema.DefaultDateColumn, cfg.DateColumn)
	assert.Equal(t, schema.DefaultNameColumn, cfg.NameColumn)
	assert.Equal(t, schema.DefaultValueColumn, cfg.ValueColumn)
	assert.Equal(t, schema.DefaultDateLayouts, cfg.DateLayouts)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidateCustomColumnsAndLayouts(t *testing.T) {
	input := validInput()
	input.SourceStr = "https://example.com/category-brands.csv"
	input.DateColumn = "year"
	input.NameColumn = "brand"
	input.ValueColumn = "worth"
	input.DateLayouts = " 2006 , ,02.01.2006"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, schema.HTTPSource, cfg.SourceKind)
	assert.Equal(t, "year", cfg.DateColumn)
	assert.Equal(t, "brand", cfg.NameColumn)
	assert.Equal(t, "worth", cfg.ValueColumn)
	assert.Equal(t, []string{"2006", "02.01.2006"}, cfg.DateLayouts)

	params := cfg.Params()
	assert.Equal(t, "http", params["source_kind"])
	assert.Equal(t, []string{"2006", "02.01.2006"}, params["date_layouts"])
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Source: "a.csv", DateLayouts: []string{"2006"}}
	clone := cfg.CloneWithSource("https://example.com/b.csv")
	clone.DateLayouts[0] = "changed"

	assert.Equal(t, "2006", cfg.DateLayouts[0])
	assert.Equal(t, "a.csv", cfg.Source)
	assert.Equal(t, schema.HTTPSource, clone.SourceKind)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/barrace", false},
		{schema.MySQLBackend, "user:pass@localhost/barrace", true},
		{schema.MySQLBackend, "", true},
		{schema.PostgreSQLBackend, "host=localhost user=u password=p dbname=barrace", false},
		{schema.PostgreSQLBackend, "host=localhost", true},
		{schema.PostgreSQLBackend, "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+"/"+tt.connStr, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectSourceKind(t *testing.T) {
	assert.Equal(t, schema.HTTPSource, DetectSourceKind("HTTPS://example.com/x.csv"))
	assert.Equal(t, schema.HTTPSource, DetectSourceKind("http://example.com/x.csv"))
	assert.Equal(t, schema.FileSource, DetectSourceKind("./x.csv"))
	assert.Equal(t, schema.FileSource, DetectSourceKind("ftp://example.com/x.csv"))
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	ProcessProfilingConfig(profile, "")
	assert.False(t, profile.Enabled)

	ProcessProfilingConfig(profile, "run1")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)
}
