package config

import (
	"fmt"
	"math"
	"os"

	"ssvep-observer/src/helpers"
	"ssvep-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// DefaultConfig returns the configuration matching a stock 500 Hz, 8 channel
// setup with a 1-50 Hz band and 1 second integration windows.
func DefaultConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "ssvep-observer",
		Host:     "0.0.0.0",
		Port:     8083,
		LogLevel: "INFO",
		Storage: models.MStorageConfig{
			DBType:        "sqlite",
			DBPath:        "ssvep_observer.db",
			RetentionDays: 7,
		},
		Network: models.MNetworkConfig{
			MaxRetries:       5,
			ReconnectSeconds: 1,
			WriteTimeout:     2,
		},
		Source: models.MSourceSetConfig{
			SampleRate: 500.0,
			BlockSize:  100,
			Channels:   8,
			Sources: []models.MSourceConfig{
				{Name: "simulator", Kind: "simulator", Seed: 1},
			},
		},
		Processing: models.MProcessingConfig{
			TimeAxis:            "time",
			FreqAxis:            "freq",
			FilterOrder:         3,
			FilterLowHz:         1.0,
			FilterHighHz:        50.0,
			DecimateFactor:      2,
			BufferSeconds:       20.0,
			IntegrationTime:     1.0,
			MultipleComparisons: true,
			SignifThreshold:     2.0,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig creates a Config from a YAML file. A missing file is not an
// error: the defaults are written to the given path and returned.
func NewConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		config := DefaultConfig()
		if saveErr := config.Save(configPath); saveErr != nil {
			return nil, fmt.Errorf("failed to write default config to '%s': %w", configPath, saveErr)
		}
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// DecimatedRate returns the stream rate after the decimation stage.
func (c *Config) DecimatedRate() float64 {
	return c.Source.SampleRate / float64(c.Processing.DecimateFactor)
}

// -----------------------------------------------------------------------------

// WindowSamples returns n = floor(integration_time / gain) at the
// post-decimation rate.
func (c *Config) WindowSamples() int {
	gain := 1.0 / c.DecimatedRate()
	return int(math.Floor(c.Processing.IntegrationTime / gain))
}

// -----------------------------------------------------------------------------

// Validate rejects every configuration hazard before streaming starts.
// Integration windows that cannot produce at least one sample, or that
// cannot fit the sampler's buffer twice over, would silently corrupt slices
// at runtime, so they are refused here.
func (c *Config) Validate() error {
	if c.Name == "" {
		return helpers.NewConfigurationError("application name cannot be empty")
	}
	if c.Host == "" {
		return helpers.NewConfigurationError("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return helpers.NewConfigurationError("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	switch c.Storage.DBType {
	case "sqlite":
		if c.Storage.DBPath == "" {
			return helpers.NewConfigurationError("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return helpers.NewConfigurationError("connection string cannot be empty for postgres")
		}
	default:
		return helpers.NewConfigurationError("unknown database type: %s (must be sqlite or postgres)", c.Storage.DBType)
	}
	if c.Storage.RetentionDays <= 0 {
		return helpers.NewConfigurationError("retention days must be greater than 0")
	}

	// Validate Source configuration
	if c.Source.SampleRate <= 0 {
		return helpers.NewConfigurationError("sample rate must be greater than 0")
	}
	if c.Source.BlockSize <= 0 {
		return helpers.NewConfigurationError("block size must be greater than 0")
	}
	if c.Source.Channels < 1 {
		return helpers.NewConfigurationError("at least one channel must be configured")
	}
	if len(c.Source.ChannelLabels) > 0 && len(c.Source.ChannelLabels) != c.Source.Channels {
		return helpers.NewConfigurationError("channel label count %d does not match channel count %d",
			len(c.Source.ChannelLabels), c.Source.Channels)
	}
	if len(c.Source.Sources) == 0 {
		return helpers.NewConfigurationError("at least one signal source must be configured")
	}
	for i, src := range c.Source.Sources {
		if src.Name == "" {
			return helpers.NewConfigurationError("source %d must have a name", i)
		}
		switch src.Kind {
		case "simulator":
		case "gateway":
			if src.URL == "" {
				return helpers.NewConfigurationError("source '%s' is a gateway and must have a url", src.Name)
			}
		default:
			return helpers.NewConfigurationError("source '%s' has unknown kind: %s", src.Name, src.Kind)
		}
	}

	// Validate Processing configuration
	p := c.Processing
	if p.TimeAxis == "" || p.FreqAxis == "" {
		return helpers.NewConfigurationError("time and frequency axis names cannot be empty")
	}
	if p.DecimateFactor < 1 {
		return helpers.NewConfigurationError("decimate factor must be at least 1")
	}
	nyquist := c.DecimatedRate() / 2
	if p.FilterOrder < 1 {
		return helpers.NewConfigurationError("filter order must be at least 1")
	}
	if p.FilterLowHz <= 0 || p.FilterLowHz >= p.FilterHighHz {
		return helpers.NewConfigurationError("filter band must satisfy 0 < low < high, got [%g, %g]", p.FilterLowHz, p.FilterHighHz)
	}
	if p.FilterHighHz >= c.Source.SampleRate/2 {
		return helpers.NewConfigurationError("filter cutoff %g Hz is at or above the raw nyquist %g Hz", p.FilterHighHz, c.Source.SampleRate/2)
	}
	if p.IntegrationTime <= 0 {
		return helpers.NewConfigurationError("integration time must be greater than 0")
	}
	if c.WindowSamples() < 1 {
		return helpers.NewConfigurationError("integration time %gs yields no samples at %g Hz", p.IntegrationTime, c.DecimatedRate())
	}
	if p.BufferSeconds <= 0 {
		return helpers.NewConfigurationError("buffer seconds must be greater than 0")
	}
	if p.IntegrationTime*2 > p.BufferSeconds {
		return helpers.NewConfigurationError("buffer of %gs cannot hold both %gs windows of a recording",
			p.BufferSeconds, p.IntegrationTime)
	}
	if p.FreqRangeHighHz != 0 {
		if p.FreqRangeLowHz < 0 || p.FreqRangeLowHz >= p.FreqRangeHighHz {
			return helpers.NewConfigurationError("frequency range must satisfy 0 <= low < high, got [%g, %g]",
				p.FreqRangeLowHz, p.FreqRangeHighHz)
		}
		if p.FreqRangeHighHz > nyquist {
			return helpers.NewConfigurationError("frequency range high %g Hz exceeds the decimated nyquist %g Hz",
				p.FreqRangeHighHz, nyquist)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
