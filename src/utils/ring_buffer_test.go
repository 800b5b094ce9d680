package utils

import (
	"testing"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func ringBlock(start int64, n int) models.MSignalBlock {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = []float64{float64(start + int64(i)), -float64(start + int64(i))}
	}
	return models.MSignalBlock{Samples: samples, SampleRate: 100, StartIndex: start}
}

// -----------------------------------------------------------------------------

func TestSignalRingExtractByAbsoluteIndex(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 50))

	data, err := sr.Extract(10, 20)
	require.NoError(t, err)
	require.Len(t, data, 10)
	assert.Equal(t, 10.0, data[0][0])
	assert.Equal(t, -19.0, data[9][1])
}

// -----------------------------------------------------------------------------

func TestSignalRingExtractAcrossWrap(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 250))

	require.Equal(t, int64(250), sr.Head())

	// Only [150, 250) survives; a wrapped range must still read correctly
	data, err := sr.Extract(200, 240)
	require.NoError(t, err)
	assert.Equal(t, 200.0, data[0][0])
	assert.Equal(t, 239.0, data[39][0])
}

// -----------------------------------------------------------------------------

func TestSignalRingRejectsEvictedRange(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 250))

	_, err := sr.Extract(100, 150)
	assert.ErrorIs(t, err, ErrRangeEvicted)
}

// -----------------------------------------------------------------------------

func TestSignalRingRejectsFutureRange(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 50))

	_, err := sr.Extract(40, 60)
	assert.ErrorIs(t, err, ErrRangeNotReady)
}

// -----------------------------------------------------------------------------

func TestSignalRingExtractCopiesData(t *testing.T) {
	sr := NewSignalRing(10, 1)
	sr.Write(models.MSignalBlock{Samples: [][]float64{{1}, {2}}})

	data, err := sr.Extract(0, 2)
	require.NoError(t, err)

	// Overwriting the ring must not change the extracted slice
	sr.Write(ringBlock(2, 10))
	assert.Equal(t, 1.0, data[0][0])
}

// -----------------------------------------------------------------------------

func TestSignalRingLatest(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 30))

	data, start := sr.Latest(10)
	require.Len(t, data, 10)
	assert.Equal(t, int64(20), start)
	assert.Equal(t, 20.0, data[0][0])

	// Asking for more than buffered returns what exists
	data, start = sr.Latest(50)
	assert.Len(t, data, 30)
	assert.Equal(t, int64(0), start)
}

// -----------------------------------------------------------------------------

func TestSignalRingReset(t *testing.T) {
	sr := NewSignalRing(100, 2)
	sr.Write(ringBlock(0, 50))
	sr.Reset()

	assert.Equal(t, int64(0), sr.Head())
	_, err := sr.Extract(0, 10)
	assert.ErrorIs(t, err, ErrRangeNotReady)
}
