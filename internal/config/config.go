// Package config loads runtime settings from defaults, an optional JSON or
// YAML file and COSMOVIEW_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/cosmoview/internal/logging"
	"github.com/signalsfoundry/cosmoview/internal/observability"
	"github.com/signalsfoundry/cosmoview/model"
)

// EnvPrefix is prepended to environment overrides, e.g. COSMOVIEW_SIM_TIMESCALE.
const EnvPrefix = "COSMOVIEW"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimConfig controls the frame clock. StartTime is RFC 3339; empty means
// the wall clock at startup.
type SimConfig struct {
	TimeScale float64       `mapstructure:"timeScale"`
	Tick      time.Duration `mapstructure:"tick"`
	Duration  time.Duration `mapstructure:"duration"`
	StartTime string        `mapstructure:"startTime"`
	Mode      string        `mapstructure:"mode"` // realtime | accelerated
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"serviceName"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type EphemerisConfig struct {
	Path string `mapstructure:"path"`
}

// CameraConfig describes the demo camera: where it starts and what it flies to.
type CameraConfig struct {
	Center        string        `mapstructure:"center"`
	Reference     string        `mapstructure:"reference"`
	Target        string        `mapstructure:"target"`
	Distance      float64       `mapstructure:"distance"`
	Azimuth       float64       `mapstructure:"azimuth"`
	Elevation     float64       `mapstructure:"elevation"`
	Up            string        `mapstructure:"up"`
	Action        string        `mapstructure:"action"` // center | goto | orbitgoto
	GotoDuration  time.Duration `mapstructure:"gotoDuration"`
	FinalDistance float64       `mapstructure:"finalDistance"`
}

// Config is the full runtime configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Sim       SimConfig       `mapstructure:"sim"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Ephemeris EphemerisConfig `mapstructure:"ephemeris"`
	Camera    CameraConfig    `mapstructure:"camera"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("sim.timeScale", 1.0)
	v.SetDefault("sim.tick", "50ms")
	v.SetDefault("sim.duration", "10s")
	v.SetDefault("sim.startTime", "2021-10-02T14:11:00Z")
	v.SetDefault("sim.mode", "accelerated")

	v.SetDefault("metrics.addr", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "cosmoview")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sampleRatio", 1.0)

	v.SetDefault("catalog.path", "")
	v.SetDefault("ephemeris.path", "")

	v.SetDefault("camera.center", "Earth")
	v.SetDefault("camera.reference", "Sun")
	v.SetDefault("camera.target", "Moon")
	v.SetDefault("camera.distance", 30000.0)
	v.SetDefault("camera.azimuth", 0.0)
	v.SetDefault("camera.elevation", 0.0)
	v.SetDefault("camera.up", "CenterNorth")
	v.SetDefault("camera.action", "goto")
	v.SetDefault("camera.gotoDuration", "5s")
	v.SetDefault("camera.finalDistance", 10000.0)
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
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

// Validate checks value ranges that the loaders cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.Tick <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick must be positive, got %s", c.Sim.Tick))
	}
	if c.Sim.Duration < 0 {
		errs = append(errs, fmt.Errorf("sim.duration must not be negative, got %s", c.Sim.Duration))
	}
	switch strings.ToLower(c.Sim.Mode) {
	case "realtime", "accelerated":
	default:
		errs = append(errs, fmt.Errorf("sim.mode %q is not realtime or accelerated", c.Sim.Mode))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sampleRatio %v outside [0, 1]", c.Tracing.SampleRatio))
	}
	if c.Camera.FinalDistance <= 0 {
		errs = append(errs, fmt.Errorf("camera.finalDistance must be positive, got %v", c.Camera.FinalDistance))
	}
	if c.Camera.GotoDuration < 0 {
		errs = append(errs, fmt.Errorf("camera.gotoDuration must not be negative, got %s", c.Camera.GotoDuration))
	}
	if _, err := c.StartSeconds(time.Time{}); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StartSeconds returns the configured start as seconds past J2000, or now
// when no start time is set.
func (c *Config) StartSeconds(now time.Time) (float64, error) {
	if c.Sim.StartTime == "" {
		return model.SecondsSinceJ2000(now), nil
	}
	t, err := time.Parse(time.RFC3339, c.Sim.StartTime)
	if err != nil {
		return 0, fmt.Errorf("sim.startTime: %w", err)
	}
	return model.SecondsSinceJ2000(t), nil
}

// Logging converts the log section for logging.New.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// TracingSettings converts the tracing section for observability.InitTracing.
func (c *Config) TracingSettings() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.Tracing.Enabled,
		ServiceName: c.Tracing.ServiceName,
		Exporter:    c.Tracing.Exporter,
		Endpoint:    c.Tracing.Endpoint,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
