// Package config loads the trustsum configuration from a YAML file, a .env
// file and TRUSTSUM_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sanonone/trustsum/pkg/engine"
	"github.com/sanonone/trustsum/pkg/textanalyzer"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRUSTSUM_"

// PathConfig locates inputs and outputs.
type PathConfig struct {
	CachedDir      string `yaml:"cached_dir"`
	DatasetDir     string `yaml:"dataset_dir"`
	OutputDir      string `yaml:"output_dir"`
	ValidationFile string `yaml:"validation_file"`
}

// OptionsConfig holds the run switches.
type OptionsConfig struct {
	StopOnError       bool `yaml:"stop_on_error"`
	UseLibraryRanking bool `yaml:"use_library_ranking"`
	OutputGraph       bool `yaml:"output_graph"`
	UseCache          bool `yaml:"use_cache"`
	// Workers bounds how many documents are summarized at once.
	Workers int `yaml:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	// AuthToken enables bearer authentication when not empty.
	AuthToken string `yaml:"auth_token"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config is the whole configuration file.
type Config struct {
	Path       PathConfig           `yaml:"path"`
	Parameters engine.Params        `yaml:"parameters"`
	Options    OptionsConfig        `yaml:"options"`
	Preprocess textanalyzer.Options `yaml:"preprocess"`
	// TargetDataKey is the dotted path of the text fields in JSON documents.
	// Empty means every string in the file.
	TargetDataKey string       `yaml:"target_data_key"`
	Server        ServerConfig `yaml:"server"`
	Log           LogConfig    `yaml:"log"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Path: PathConfig{
			CachedDir:      "cached",
			DatasetDir:     "dataset",
			OutputDir:      "output",
			ValidationFile: "validation.json",
		},
		Parameters: engine.DefaultParams(),
		Options: OptionsConfig{
			OutputGraph: true,
			Workers:     defaultWorkers(),
		},
		Preprocess:    textanalyzer.DefaultOptions(),
		TargetDataKey: "full_text",
		Server: ServerConfig{
			HTTPAddr: ":9191",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultWorkers() int {
	return min(max(runtime.NumCPU(), 1), 8)
}

// Load reads path (optional) on top of the defaults, then applies .env and
// TRUSTSUM_* overrides. Unknown YAML keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("[CONFIG] Failed to read .env", "error", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from TRUSTSUM_* variables.
func (c *Config) applyEnv() error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	float := func(name string, dst *float64) {
		if v, ok := lookup(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("CACHED_DIR", &c.Path.CachedDir)
	str("DATASET_DIR", &c.Path.DatasetDir)
	str("OUTPUT_DIR", &c.Path.OutputDir)
	str("VALIDATION_FILE", &c.Path.ValidationFile)

	float("DAMPING", &c.Parameters.Damping)
	float("CALCULATION_THRESHOLD", &c.Parameters.CalculationThreshold)
	integer("MAX_CALCULATION_ITERATION", &c.Parameters.MaxCalculationIteration)
	integer("MAX_TRUSTRANK_ITERATION", &c.Parameters.MaxTrustRankIteration)
	integer("TRUSTRANK_BIAS_AMOUNT", &c.Parameters.TrustRankBiasAmount)
	float("TRUSTRANK_FILTER_THRESHOLD", &c.Parameters.TrustRankFilterThreshold)
	integer("MAX_SUMMARIZE_LENGTH", &c.Parameters.MaxSummarizeLength)
	integer("SUMMARY_ROOTS", &c.Parameters.SummaryRoots)

	boolean("STOP_ON_ERROR", &c.Options.StopOnError)
	boolean("USE_LIBRARY_RANKING", &c.Options.UseLibraryRanking)
	boolean("OUTPUT_GRAPH", &c.Options.OutputGraph)
	boolean("USE_CACHE", &c.Options.UseCache)
	integer("WORKERS", &c.Options.Workers)

	str("LANGUAGE", &c.Preprocess.Language)
	str("TARGET_DATA_KEY", &c.TargetDataKey)

	str("HTTP_ADDR", &c.Server.HTTPAddr)
	str("AUTH_TOKEN", &c.Server.AuthToken)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Parameters.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Path.DatasetDir == "" {
		errs = append(errs, errors.New("path.dataset_dir is required"))
	}
	if c.Path.OutputDir == "" {
		errs = append(errs, errors.New("path.output_dir is required"))
	}
	if c.Options.UseCache && c.Path.CachedDir == "" {
		errs = append(errs, errors.New("path.cached_dir is required when options.use_cache is set"))
	}
	if c.Options.Workers < 1 {
		errs = append(errs, fmt.Errorf("options.workers must be >= 1, got %d", c.Options.Workers))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// EngineParams returns the engine parameters with the option switches applied.
func (c *Config) EngineParams() engine.Params {
	p := c.Parameters
	p.UseLibraryRanking = p.UseLibraryRanking || c.Options.UseLibraryRanking
	return p
}

// TargetKey splits TargetDataKey into its path segments.
func (c *Config) TargetKey() []string {
	if c.TargetDataKey == "" {
		return nil
	}
	return strings.Split(c.TargetDataKey, ".")
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}
