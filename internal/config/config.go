// Package config loads ganttloom settings from .ganttloom.yaml, .env and
// GANTTLOOM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configName = ".ganttloom"
	envPrefix  = "GANTTLOOM"

	// DefaultFile is the file written by WriteDefault.
	DefaultFile = configName + ".yaml"
)

var validate = validator.New()

// Config is the full application configuration.
type Config struct {
	Source    SourceConfig    `mapstructure:"source" yaml:"source"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Chart     ChartConfig     `mapstructure:"chart" yaml:"chart"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// SourceConfig selects where task data comes from.
type SourceConfig struct {
	Kind    string        `mapstructure:"kind" yaml:"kind" validate:"oneof=fixtures file url"`
	Path    string        `mapstructure:"path" yaml:"path" validate:"required_if=Kind file"`
	URL     string        `mapstructure:"url" yaml:"url" validate:"required_if=Kind url,omitempty,url"`
	Format  string        `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=csv json"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required"`
}

// ChartConfig holds chart defaults.
type ChartConfig struct {
	Width       float64 `mapstructure:"width" yaml:"width" validate:"gt=200"`
	Granularity string  `mapstructure:"granularity" yaml:"granularity" validate:"oneof=quarters months weeks"`
}

// LogConfig configures the stderr logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// TelemetryConfig enables the OpenTelemetry stdout exporters.
type TelemetryConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source:    SourceConfig{Kind: "fixtures", Timeout: 30 * time.Second},
		Server:    ServerConfig{Addr: ":8080"},
		Chart:     ChartConfig{Width: 1200, Granularity: "quarters"},
		Log:       LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{Interval: time.Minute},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("source.kind", d.Source.Kind)
	v.SetDefault("source.path", d.Source.Path)
	v.SetDefault("source.url", d.Source.URL)
	v.SetDefault("source.format", d.Source.Format)
	v.SetDefault("source.timeout", d.Source.Timeout)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("chart.width", d.Chart.Width)
	v.SetDefault("chart.granularity", d.Chart.Granularity)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.interval", d.Telemetry.Interval)
}

// Options controls where Load looks.
type Options struct {
	FS   afero.Fs // nil means the OS filesystem
	File string   // explicit config file; must exist when set
	Dir  string   // directory searched for .ganttloom.yaml when File is empty
}

// Load merges defaults, the config file and the environment, then
// validates the result. A missing .ganttloom.yaml is not an error.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	if opts.FS != nil {
		v.SetFs(opts.FS)
	}
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored; with no arguments ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path. An
// existing file is left alone unless force is set.
func WriteDefault(fsys afero.Fs, path string, force bool) error {
	if !force {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if exists {
			return fmt.Errorf("%s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
