// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Log     LogConfig     `yaml:"log"`
	Player  PlayerConfig  `yaml:"player"`
	Content ContentConfig `yaml:"content"`
	MPRIS   MPRISConfig   `yaml:"mpris"`
}

// AppConfig represents application identity.
type AppConfig struct {
	ID   string `yaml:"id" default:"com.xampmusic.player" validate:"required"`
	Name string `yaml:"name" default:"XAMP Player" validate:"required"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

// PlayerConfig represents playback configuration.
type PlayerConfig struct {
	InitialVolume    *float64      `yaml:"initial_volume" default:"1" validate:"gte=0,lte=1"`
	ProgressInterval time.Duration `yaml:"progress_interval" default:"250ms" validate:"gte=10ms,lte=5s"`
	SampleRate       int           `yaml:"sample_rate" default:"44100" validate:"oneof=22050 44100 48000"`
	MockAudio        bool          `yaml:"mock_audio"`
	MockDuration     time.Duration `yaml:"mock_duration" default:"3m"`
	AutoAdvance      bool          `yaml:"auto_advance"`
	HTTPTimeout      time.Duration `yaml:"http_timeout" default:"30s" validate:"gt=0"`
}

// ContentConfig represents the content API configuration.
type ContentConfig struct {
	BaseURL  string        `yaml:"base_url" default:"http://localhost:8000/api" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	PageSize int           `yaml:"page_size" default:"20" validate:"gte=1,lte=200"`
}

// MPRISConfig represents the desktop media-key integration.
type MPRISConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Name    string `yaml:"name" default:"xamp" validate:"required,alphanum"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	// Only fails on malformed default tags.
	if err := defaults.Set(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Load loads configuration from a YAML file. An empty path yields the
// defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with XAMP_* environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("XAMP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("XAMP_CONTENT_BASE_URL"); v != "" {
		c.Content.BaseURL = v
	}
	if v := os.Getenv("XAMP_MOCK_AUDIO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "invalid XAMP_MOCK_AUDIO %q", v)
		}
		c.Player.MockAudio = b
	}
	if v := os.Getenv("XAMP_INITIAL_VOLUME"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid XAMP_INITIAL_VOLUME %q", v)
		}
		c.Player.InitialVolume = &f
	}
	return nil
}

// Volume returns the configured start-up volume.
func (p PlayerConfig) Volume() float64 {
	if p.InitialVolume == nil {
		return 1
	}
	return *p.InitialVolume
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
