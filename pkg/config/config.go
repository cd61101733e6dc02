// Package config loads and validates rangeq settings from defaults, an
// optional YAML file and RANGEQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/rangeq/pkg/observability"
	"github.com/Sumatoshi-tech/rangeq/pkg/rangeq"
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
)

// Sentinel validation errors.
var (
	ErrUnknownEngine    = errors.New("unknown engine")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrEmptySeparator   = errors.New("output separator must not be empty")
	ErrInvalidCapacity  = errors.New("engine capacity out of range")
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// FileName is the base name searched for when no explicit path is given.
const FileName = "rangeq"

// EnvPrefix prefixes every environment override, e.g. RANGEQ_ENGINE_NAME.
const EnvPrefix = "RANGEQ"

// Config holds all rangeq settings.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"    yaml:"engine"`
	Output    OutputConfig    `mapstructure:"output"    yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// EngineConfig selects the ordered set behind the driver.
type EngineConfig struct {
	Name     string `mapstructure:"name"     yaml:"name"`
	Capacity int    `mapstructure:"capacity" yaml:"capacity"`
}

// OutputConfig shapes driver output.
type OutputConfig struct {
	Separator string `mapstructure:"separator" yaml:"separator"`
	// Dump is a DOT file written with the final tree, empty to skip.
	Dump string `mapstructure:"dump" yaml:"dump"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure" yaml:"otlp_insecure"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"  yaml:"otlp_headers"`
	SampleRatio  float64 `mapstructure:"sample_ratio"  yaml:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"  yaml:"metrics_file"`
	Environment  string  `mapstructure:"environment"   yaml:"environment"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for rangeq.yaml in the working directory,
// ./config and $HOME/.config/rangeq; a missing file is not an error then.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(FileName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.config/rangeq")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Engine:  EngineConfig{Name: rangeq.DefaultEngine},
		Output:  OutputConfig{Separator: rangeq.DefaultSeparator},
		Logging: LoggingConfig{Level: "warn", Format: FormatText},
	}
}

func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("engine.name", def.Engine.Name)
	viperCfg.SetDefault("engine.capacity", def.Engine.Capacity)

	viperCfg.SetDefault("output.separator", def.Output.Separator)
	viperCfg.SetDefault("output.dump", "")

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.metrics_file", "")
	viperCfg.SetDefault("telemetry.environment", "")
}

// Validate checks every setting and returns the first problem found.
func (config *Config) Validate() error {
	if !rangeq.HasEngine(config.Engine.Name) {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, config.Engine.Name)
	}

	if config.Engine.Capacity < 0 || int64(config.Engine.Capacity) > rbtree.MaxCapacity {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, config.Engine.Capacity)
	}

	if config.Output.Separator == "" {
		return ErrEmptySeparator
	}

	_, err := config.LogLevel()
	if err != nil {
		return err
	}

	switch config.Logging.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	return nil
}

// LogLevel parses Logging.Level ("debug", "info", "warn", "error").
func (config *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(config.Logging.Level))
	if err != nil {
		return level, fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	return level, nil
}

// Observability converts the logging and telemetry sections for
// observability.Init. mode names the running subcommand.
func (config *Config) Observability(mode, version string) observability.Config {
	obsCfg := observability.DefaultConfig()

	obsCfg.ServiceVersion = version
	obsCfg.Mode = mode
	obsCfg.Environment = config.Telemetry.Environment
	obsCfg.OTLPEndpoint = config.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = config.Telemetry.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(config.Telemetry.OTLPHeaders)
	obsCfg.SampleRatio = config.Telemetry.SampleRatio
	obsCfg.MetricsFile = config.Telemetry.MetricsFile
	obsCfg.LogJSON = config.Logging.Format == FormatJSON

	if level, err := config.LogLevel(); err == nil {
		obsCfg.LogLevel = level
	}

	return obsCfg
}
