package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the XDG directories at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "etc"))
	t.Setenv("IOFIMPORT_DB", "")
	t.Setenv("IOFIMPORT_LOG_LEVEL", "")
	t.Setenv("AWS_REGION", "")
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join(dir, "data", "iofimport", "results.db"), cfg.Database)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Import.Concurrency)
	assert.False(t, cfg.Import.Strict)
	assert.True(t, cfg.Import.RecomputePositions)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce())
	assert.Equal(t, "*.xml", cfg.Watch.Pattern)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_SearchesXDGConfigHome(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "config", "iofimport", "config.yaml"), "log:\n  level: debug\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, filepath.Join(dir, "config", "iofimport", "config.yaml"), DefaultPath())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "iofimport.yaml")
	writeConfig(t, path, `
database: /srv/results.db
import:
  concurrency: 8
  strict: true
  recompute_positions: true
watch:
  debounce: 2s
  pattern: "*.xml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/results.db", cfg.Database)
	assert.Equal(t, 8, cfg.Import.Concurrency)
	assert.True(t, cfg.Import.Strict)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce())
	assert.Equal(t, "30s", cfg.Fetch.Timeout)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "empty.yaml")
	writeConfig(t, path, "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("IOFIMPORT_DB", "/tmp/override.db")
	t.Setenv("IOFIMPORT_LOG_LEVEL", "warn")
	t.Setenv("AWS_REGION", "eu-north-1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "eu-north-1", cfg.Fetch.AWSRegion)
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	tests := []struct {
		name       string
		body       string
		validation bool
	}{
		{"unknown key", "databse: /srv/results.db\n", false},
		{"bad yaml", "log: [\n", false},
		{"bad level", "log:\n  level: loud\n", true},
		{"bad format", "log:\n  format: xml\n", true},
		{"zero concurrency", "import:\n  concurrency: 0\n", true},
		{"bad duration", "fetch:\n  timeout: soon\n", true},
		{"empty pattern", "watch:\n  pattern: \"\"\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			writeConfig(t, path, tt.body)

			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, tt.validation, IsValidationError(err), "%v", err)
		})
	}
}

func TestValidationError_ListsProblems(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.Log.Level = "loud"
	cfg.Watch.Debounce = "later"

	err := cfg.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Problems)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSave_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database = "/srv/results.db"
	cfg.Fetch.AWSRegion = "eu-north-1"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
