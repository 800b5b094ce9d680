package analysis

import (
	"testing"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func makeRecording(numSamples int, gain, offset float64, trigger *models.MTriggerInterval) models.MTimedRecording {
	data := make([][]float64, numSamples)
	for i := range data {
		data[i] = []float64{float64(i)}
	}
	return models.MTimedRecording{
		Data:     data,
		TimeAxis: models.MAxis{Name: "time", Gain: gain, Offset: offset},
		Trigger:  trigger,
		Value:    "flicker",
	}
}

// -----------------------------------------------------------------------------

func TestSplitProducesAdjacentEqualWindows(t *testing.T) {
	// 2000 samples at 500 Hz, onset at index 1000, 1s integration -> n = 500
	ws := NewWindowSplitter(1.0)
	rec := makeRecording(2000, 0.002, -2.0, &models.MTriggerInterval{Start: -2.0, End: 2.0})

	baseline, stimulus, ok := ws.Split(rec)
	require.True(t, ok)

	require.Len(t, baseline.Data, 500)
	require.Len(t, stimulus.Data, 500)
	assert.Equal(t, models.TagBaseline, baseline.Tag)
	assert.Equal(t, models.TagStimulus, stimulus.Tag)

	// Baseline is [500, 1000), stimulus [1000, 1500): adjacent, disjoint
	assert.Equal(t, 500.0, baseline.Data[0][0])
	assert.Equal(t, 999.0, baseline.Data[499][0])
	assert.Equal(t, 1000.0, stimulus.Data[0][0])
	assert.Equal(t, 1499.0, stimulus.Data[499][0])

	// Window time axes: baseline starts at -1s, stimulus at onset
	assert.InDelta(t, -1.0, baseline.TimeAxis.Offset, 1e-9)
	assert.InDelta(t, 0.0, stimulus.TimeAxis.Offset, 1e-9)
}

// -----------------------------------------------------------------------------

func TestSplitDiscardsRecordingWithoutTrigger(t *testing.T) {
	ws := NewWindowSplitter(1.0)
	rec := makeRecording(2000, 0.002, -2.0, nil)

	_, _, ok := ws.Split(rec)
	require.False(t, ok)

	_, droppedNoTrigger, droppedShort := ws.Counters()
	assert.Equal(t, int64(1), droppedNoTrigger)
	assert.Equal(t, int64(0), droppedShort)
}

// -----------------------------------------------------------------------------

func TestSplitDiscardsShortRecordingEntirely(t *testing.T) {
	// Onset at index 100, but n = 500: no room for the baseline window.
	// Neither window may be emitted.
	ws := NewWindowSplitter(1.0)
	rec := makeRecording(600, 0.002, -0.2, &models.MTriggerInterval{Start: -0.2, End: 1.0})

	_, _, ok := ws.Split(rec)
	require.False(t, ok)

	split, _, droppedShort := ws.Counters()
	assert.Equal(t, int64(0), split)
	assert.Equal(t, int64(1), droppedShort)
}

// -----------------------------------------------------------------------------

func TestSplitDiscardsWhenStimulusWindowRunsPastEnd(t *testing.T) {
	// Onset at index 900 of 1200: baseline fits, stimulus would need 1400
	ws := NewWindowSplitter(1.0)
	rec := makeRecording(1200, 0.002, -1.8, &models.MTriggerInterval{Start: -1.8, End: 0.6})

	_, _, ok := ws.Split(rec)
	require.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestSplitEmptyRecording(t *testing.T) {
	ws := NewWindowSplitter(1.0)
	rec := makeRecording(0, 0.002, 0, &models.MTriggerInterval{Start: 0, End: 1})

	_, _, ok := ws.Split(rec)
	assert.False(t, ok)
}
