package core

import (
	"testing"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestNearestIndexFindsAxisZero(t *testing.T) {
	// t[i] = 0.002*i - 2.0, zero at i = 1000
	axis := models.MAxis{Name: "time", Gain: 0.002, Offset: -2.0}
	assert.Equal(t, 1000, NearestIndex(axis, 2000))
}

// -----------------------------------------------------------------------------

func TestNearestIndexZeroBeforeStart(t *testing.T) {
	axis := models.MAxis{Name: "time", Gain: 0.002, Offset: 1.0}
	assert.Equal(t, 0, NearestIndex(axis, 100))
}

// -----------------------------------------------------------------------------

func TestBinRangeFullAxis(t *testing.T) {
	axis := models.MAxis{Name: "freq", Gain: 0.5}
	low, high := BinRange(axis, 100, 0, 0)
	assert.Equal(t, 0, low)
	assert.Equal(t, 100, high)
}

// -----------------------------------------------------------------------------

func TestBinRangeRestricted(t *testing.T) {
	// Bins at 0, 0.5, 1.0, ... Hz
	axis := models.MAxis{Name: "freq", Gain: 0.5}
	low, high := BinRange(axis, 100, 5.0, 10.0)

	assert.Equal(t, 10, low)
	assert.Equal(t, 21, high) // bin 20 sits exactly on 10.0 Hz, inclusive
}

// -----------------------------------------------------------------------------

func TestStackBinPreservesFrameOrder(t *testing.T) {
	frames := []models.MSpectralFrame{
		{Data: [][]float64{{1, 10}, {2, 20}}},
		{Data: [][]float64{{3, 30}, {4, 40}}},
		{Data: [][]float64{{5, 50}, {6, 60}}},
	}

	assert.Equal(t, []float64{1, 3, 5}, StackBin(frames, 0, 0))
	assert.Equal(t, []float64{20, 40, 60}, StackBin(frames, 1, 1))
}
