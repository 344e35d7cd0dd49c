package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/trustsum/pkg/engine"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, engine.DefaultParams(), cfg.Parameters)
	assert.Equal(t, "dataset", cfg.Path.DatasetDir)
	assert.Equal(t, []string{"full_text"}, cfg.TargetKey())
	assert.Positive(t, cfg.Options.Workers)
}

func TestLoad_File(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
path:
  dataset_dir: data
  output_dir: out
parameters:
  trustrank_bias_amount: 3
  max_summarize_length: 12
  damping: 0.9
options:
  stop_on_error: true
  use_library_ranking: true
  workers: 2
preprocess:
  language: italian
  lowercase: true
target_data_key: articles.full_text
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data", cfg.Path.DatasetDir)
	assert.Equal(t, "out", cfg.Path.OutputDir)
	assert.Equal(t, 3, cfg.Parameters.TrustRankBiasAmount)
	assert.Equal(t, 12, cfg.Parameters.MaxSummarizeLength)
	assert.Equal(t, 0.9, cfg.Parameters.Damping)
	// unspecified fields keep their defaults
	assert.Equal(t, 200, cfg.Parameters.MaxCalculationIteration)
	assert.True(t, cfg.Options.StopOnError)
	assert.True(t, cfg.EngineParams().UseLibraryRanking)
	assert.Equal(t, "italian", cfg.Preprocess.Language)
	assert.True(t, cfg.Preprocess.RemoveStopWords)
	assert.Equal(t, []string{"articles", "full_text"}, cfg.TargetKey())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
parameters:
  trustrank_bias_amout: 3
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "YAML syntax error")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRUSTSUM_MAX_SUMMARIZE_LENGTH", "7")
	t.Setenv("TRUSTSUM_TRUSTRANK_FILTER_THRESHOLD", "0.01")
	t.Setenv("TRUSTSUM_STOP_ON_ERROR", "true")
	t.Setenv("TRUSTSUM_AUTH_TOKEN", "secret")
	t.Setenv("TRUSTSUM_OUTPUT_DIR", "elsewhere")

	path := writeConfig(t, "parameters:\n  max_summarize_length: 30\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Parameters.MaxSummarizeLength)
	assert.Equal(t, 0.01, cfg.Parameters.TrustRankFilterThreshold)
	assert.True(t, cfg.Options.StopOnError)
	assert.Equal(t, "secret", cfg.Server.AuthToken)
	assert.Equal(t, "elsewhere", cfg.Path.OutputDir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRUSTSUM_WORKERS=3\n"), 0o644))
	// registers the cleanup of the variable .env is about to set
	t.Setenv("TRUSTSUM_WORKERS", "")
	require.NoError(t, os.Unsetenv("TRUSTSUM_WORKERS"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Options.Workers)
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRUSTSUM_WORKERS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "TRUSTSUM_WORKERS")
}

func TestLoad_NaNParameterFailsValidation(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRUSTSUM_DAMPING", "NaN")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "damping")

	path := writeConfig(t, "parameters:\n  trustrank_filter_threshold: .nan\n")
	t.Setenv("TRUSTSUM_DAMPING", "")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "trustrank_filter_threshold")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Parameters.TrustRankBiasAmount = 0
	cfg.Options.Workers = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Options.UseCache = true
	cfg.Path.CachedDir = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"trustrank_bias_amount", "workers", "log.level", "log.format", "cached_dir"} {
		assert.ErrorContains(t, err, want)
	}
}
