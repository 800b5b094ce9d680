package config

import (
	"os"
	"path/filepath"
	"testing"

	"ssvep-observer/src/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// -----------------------------------------------------------------------------

func TestNewConfigWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cfg.Source.SampleRate)

	// The defaults must have been persisted
	_, err = os.Stat(path)
	assert.NoError(t, err)

	// A second load reads them back
	again, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Port, again.Port)
	assert.Equal(t, cfg.Processing.IntegrationTime, again.Processing.IntegrationTime)
}

// -----------------------------------------------------------------------------

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 80
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsInvertedFilterBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.FilterLowHz = 60
	cfg.Processing.FilterHighHz = 10
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsCutoffAboveNyquist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.FilterHighHz = 300 // raw nyquist is 250
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsWindowLargerThanBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.IntegrationTime = 15
	cfg.Processing.BufferSeconds = 20
	assert.Error(t, cfg.Validate(), "two 15s windows cannot fit a 20s buffer")
}

// -----------------------------------------------------------------------------

func TestValidateRejectsEmptyIntegrationWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.IntegrationTime = 0.001 // under one sample at 250 Hz
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsUnknownDBType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DBType = "mongodb"
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRequiresPostgresDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DBType = "postgres"
	cfg.Storage.DBConnectionString = ""
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsFreqRangeAboveNyquist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.FreqRangeLowHz = 5
	cfg.Processing.FreqRangeHighHz = 200 // decimated nyquist is 125
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateRejectsGatewayWithoutURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.Sources[0].Kind = "gateway"
	cfg.Source.Sources[0].URL = ""
	assert.Error(t, cfg.Validate())
}

// -----------------------------------------------------------------------------

func TestValidateReturnsConfigurationError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 80

	err := cfg.Validate()
	require.Error(t, err)

	var confErr *helpers.ConfigurationError
	assert.ErrorAs(t, err, &confErr, "validation failures carry the configuration error type")
}

// -----------------------------------------------------------------------------

func TestWindowSamples(t *testing.T) {
	cfg := DefaultConfig()
	// 500 Hz / 2 = 250 Hz decimated, 1s window
	assert.Equal(t, 250, cfg.WindowSamples())
}
