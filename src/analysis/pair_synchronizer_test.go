package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func frame(tag string, value float64) models.MSpectralFrame {
	return models.MSpectralFrame{
		Data: [][]float64{{value}},
		Tag:  tag,
	}
}

// -----------------------------------------------------------------------------

func TestPairSynchronizerPairsPositionally(t *testing.T) {
	history := NewPairedHistory()
	var pairCount atomic.Int64
	ps := NewPairSynchronizer(history, func() { pairCount.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	ps.Start(ctx, &wg)

	// Stimulus frames arrive before their baselines: pairing must hold
	ps.PushStimulus(frame(models.TagStimulus, 10))
	ps.PushStimulus(frame(models.TagStimulus, 20))
	ps.PushBaseline(frame(models.TagBaseline, 1))
	ps.PushBaseline(frame(models.TagBaseline, 2))

	require.Eventually(t, func() bool {
		return history.Len() == 2
	}, time.Second, 5*time.Millisecond)

	baselines, stimuli := history.Snapshot()
	assert.Equal(t, 1.0, baselines[0].Data[0][0])
	assert.Equal(t, 10.0, stimuli[0].Data[0][0])
	assert.Equal(t, 2.0, baselines[1].Data[0][0])
	assert.Equal(t, 20.0, stimuli[1].Data[0][0])
	assert.Equal(t, int64(2), pairCount.Load())

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestPairSynchronizerBlocksOnMissingPartner(t *testing.T) {
	history := NewPairedHistory()
	ps := NewPairSynchronizer(history, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	ps.Start(ctx, &wg)

	ps.PushBaseline(frame(models.TagBaseline, 1))

	// Without a stimulus partner no pair may appear
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, history.Len())

	ps.PushStimulus(frame(models.TagStimulus, 10))
	require.Eventually(t, func() bool {
		return history.Len() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestPairSynchronizerResetClearsQueuesAndHistory(t *testing.T) {
	history := NewPairedHistory()
	ps := NewPairSynchronizer(history, nil)

	history.Append(SpectralPair{
		Baseline: frame(models.TagBaseline, 1),
		Stimulus: frame(models.TagStimulus, 10),
	})
	ps.PushBaseline(frame(models.TagBaseline, 2))

	ps.Reset()

	assert.Equal(t, 0, history.Len())
	assert.Equal(t, 0, ps.baselineQueue.Len())
}

// -----------------------------------------------------------------------------

func TestPairSynchronizerResetInvalidatesPoppedBaseline(t *testing.T) {
	history := NewPairedHistory()
	ps := NewPairSynchronizer(history, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	ps.Start(ctx, &wg)

	// The pairing goroutine pops this baseline and blocks waiting for its
	// stimulus partner
	ps.PushBaseline(frame(models.TagBaseline, 1))
	require.Eventually(t, func() bool {
		return ps.baselineQueue.Len() == 0
	}, time.Second, time.Millisecond)

	ps.Reset()

	// The first post-reset pair meets the stale popped baseline and is
	// sacrificed to restore alignment
	ps.PushPair(frame(models.TagBaseline, 2), frame(models.TagStimulus, 20))
	require.Eventually(t, func() bool {
		return ps.baselineQueue.Len() == 0 && ps.stimulusQueue.Len() == 0
	}, time.Second, time.Millisecond)
	assert.Equal(t, 0, history.Len(), "a pre-reset baseline must never pair with a post-reset stimulus")

	// From here pairing is clean and positionally aligned
	ps.PushPair(frame(models.TagBaseline, 3), frame(models.TagStimulus, 30))
	require.Eventually(t, func() bool {
		return history.Len() == 1
	}, time.Second, time.Millisecond)

	baselines, stimuli := history.Snapshot()
	assert.Equal(t, 3.0, baselines[0].Data[0][0])
	assert.Equal(t, 30.0, stimuli[0].Data[0][0])

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestPairedHistorySnapshotIsIsolated(t *testing.T) {
	history := NewPairedHistory()
	history.Append(SpectralPair{
		Baseline: frame(models.TagBaseline, 1),
		Stimulus: frame(models.TagStimulus, 10),
	})

	baselines, _ := history.Snapshot()
	history.Append(SpectralPair{
		Baseline: frame(models.TagBaseline, 2),
		Stimulus: frame(models.TagStimulus, 20),
	})

	assert.Len(t, baselines, 1)
	assert.Equal(t, 2, history.Len())
}
