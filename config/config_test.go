package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/fallback"
	"github.com/spektr-org/askdata/source"
)

// isolate runs the test in an empty working and home directory so that no
// real config file or API key leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ASKDATA_FALLBACK_API_KEY", "")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLimit, cfg.DefaultLimit)
	assert.Equal(t, DefaultListCap, cfg.ListCap)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultMaxRows, cfg.MaxRows)
	assert.Equal(t, OutputText, cfg.Output)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, fallback.DefaultModel, cfg.Fallback.Model)
	assert.Empty(t, cfg.Fallback.APIKey)
	assert.Empty(t, cfg.Sources)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), `
default_limit: 5
output: JSON
fallback:
  model: gemini-test
sources:
  - id: orders
    kind: csv
    path: orders.csv
  - id: db
    kind: sqlite
    path: shop.db
    table: orders
`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, FileName, cfg.File)
	assert.Equal(t, 5, cfg.DefaultLimit)
	assert.Equal(t, OutputJSON, cfg.Output, "output is case-insensitive")
	assert.Equal(t, "gemini-test", cfg.Fallback.Model)
	assert.Equal(t, fallback.DefaultEndpoint, cfg.Fallback.Endpoint)
	assert.Equal(t, []source.Spec{
		{ID: "orders", Kind: source.KindCSV, Path: "orders.csv"},
		{ID: "db", Kind: source.KindSQLite, Path: "shop.db", Table: "orders"},
	}, cfg.Sources)

	spec, ok := cfg.Source("db")
	require.True(t, ok)
	assert.Equal(t, "orders", spec.Table)
	_, ok = cfg.Source("missing")
	assert.False(t, ok)
}

func TestLoadHomeFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".askdata", FileName), "list_cap: 7\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ListCap)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	isolate(t)
	_, err := Load("nope.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file nope.yaml")
}

func TestLoadEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, FileName), "default_limit: 5\n")
	t.Setenv("ASKDATA_DEFAULT_LIMIT", "3")
	t.Setenv("ASKDATA_FALLBACK_MODEL", "gemini-env")
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.DefaultLimit, "env beats file")
	assert.Equal(t, "gemini-env", cfg.Fallback.Model)
	assert.Equal(t, "from-gemini-env", cfg.Fallback.APIKey)
}

func TestLoadFlags(t *testing.T) {
	isolate(t)
	t.Setenv("ASKDATA_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "text", "")
	flags.Int("default-limit", 10, "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--output=yaml", "--verbose"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, OutputYAML, cfg.Output, "changed flag beats env")
	assert.True(t, cfg.Verbose)
	assert.Equal(t, DefaultLimit, cfg.DefaultLimit, "unchanged flag keeps lower layers")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"limit", func(c *Config) { c.DefaultLimit = 0 }, "default_limit must be positive"},
		{"output", func(c *Config) { c.Output = "xml" }, `invalid output format "xml"`},
		{"missing id", func(c *Config) { c.Sources = []source.Spec{{Kind: source.KindCSV, Path: "a.csv"}} }, "id is required"},
		{"duplicate id", func(c *Config) {
			c.Sources = []source.Spec{{ID: "a", Kind: source.KindCSV, Path: "a.csv"}, {ID: "a", Kind: source.KindJSON, Path: "a.json"}}
		}, `duplicate id "a"`},
		{"missing path", func(c *Config) { c.Sources = []source.Spec{{ID: "a", Kind: source.KindCSV}} }, "path is required"},
		{"missing dsn", func(c *Config) { c.Sources = []source.Spec{{ID: "a", Kind: source.KindPG, Table: "t"}} }, "dsn is required"},
		{"missing table", func(c *Config) { c.Sources = []source.Spec{{ID: "a", Kind: source.KindMySQL, DSN: "u@/db"}} }, "table is required"},
		{"unknown kind", func(c *Config) { c.Sources = []source.Spec{{ID: "a", Kind: "parquet", Path: "a.parquet"}} }, "unsupported"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", FileName)

	require.NoError(t, WriteTemplate(path, false))
	assert.ErrorIs(t, WriteTemplate(path, false), ErrConfigExists)
	require.NoError(t, WriteTemplate(path, true))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, Template().Sources, cfg.Sources)
	assert.Equal(t, DefaultLimit, cfg.DefaultLimit)
	assert.Equal(t, path, cfg.File)
}

func TestSourceOptions(t *testing.T) {
	assert.Len(t, Default().SourceOptions(), 2)
}
