package dsp

import (
	"testing"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func blockOf(values []float64, rate float64, start int64) models.MSignalBlock {
	samples := make([][]float64, len(values))
	for i, v := range values {
		samples[i] = []float64{v}
	}
	return models.MSignalBlock{Samples: samples, SampleRate: rate, StartIndex: start}
}

// -----------------------------------------------------------------------------

func TestDecimatorKeepsEveryKthSample(t *testing.T) {
	d := NewDecimator(3)

	out := d.ProcessBlock(blockOf([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 300, 0))

	require.Equal(t, 3, out.NumSamples())
	assert.Equal(t, 0.0, out.Samples[0][0])
	assert.Equal(t, 3.0, out.Samples[1][0])
	assert.Equal(t, 6.0, out.Samples[2][0])
	assert.Equal(t, 100.0, out.SampleRate)
}

// -----------------------------------------------------------------------------

func TestDecimatorPhaseCarriesAcrossBlocks(t *testing.T) {
	d := NewDecimator(3)

	first := d.ProcessBlock(blockOf([]float64{0, 1, 2, 3}, 300, 0))
	second := d.ProcessBlock(blockOf([]float64{4, 5, 6, 7}, 300, 4))

	// Kept raw indices must be 0, 3, 6 regardless of the block split
	require.Equal(t, 2, first.NumSamples())
	require.Equal(t, 1, second.NumSamples())
	assert.Equal(t, 6.0, second.Samples[0][0])

	// Output indices stay monotonic
	assert.Equal(t, int64(0), first.StartIndex)
	assert.Equal(t, int64(2), second.StartIndex)
}

// -----------------------------------------------------------------------------

func TestDecimatorFactorOnePassesThrough(t *testing.T) {
	d := NewDecimator(1)
	out := d.ProcessBlock(blockOf([]float64{1, 2, 3}, 500, 0))

	require.Equal(t, 3, out.NumSamples())
	assert.Equal(t, 500.0, out.SampleRate)
}

// -----------------------------------------------------------------------------

func TestDecimatorReset(t *testing.T) {
	d := NewDecimator(2)
	d.ProcessBlock(blockOf([]float64{0, 1, 2}, 100, 0))

	d.Reset()
	out := d.ProcessBlock(blockOf([]float64{10, 11}, 100, 0))

	assert.Equal(t, int64(0), out.StartIndex)
	assert.Equal(t, 10.0, out.Samples[0][0])
}
