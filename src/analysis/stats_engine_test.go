package analysis

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

// twoBinFrame builds a 2-bin, 1-channel frame with 1 Hz bins.
func twoBinFrame(tag string, b0, b1 float64) models.MSpectralFrame {
	return models.MSpectralFrame{
		Data:     [][]float64{{b0}, {b1}},
		FreqAxis: models.MAxis{Name: "freq", Gain: 1.0},
		Tag:      tag,
	}
}

// -----------------------------------------------------------------------------

func collectResult(t *testing.T, engine *StatsEngine, results <-chan *models.MStatisticResult) *models.MStatisticResult {
	t.Helper()

	engine.Raise()
	select {
	case r := <-results:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no statistic emitted")
		return nil
	}
}

// -----------------------------------------------------------------------------

func TestStatsEngineEmptyBelowTwoPairs(t *testing.T) {
	history := NewPairedHistory()
	results := make(chan *models.MStatisticResult, 4)
	engine := NewStatsEngine(history, 0, 0, true, func(r *models.MStatisticResult) { results <- r })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	engine.Start(ctx, &wg)

	r := collectResult(t, engine, results)
	require.True(t, r.Empty)
	assert.Equal(t, 0, r.Pairs)

	history.Append(SpectralPair{
		Baseline: twoBinFrame(models.TagBaseline, 1, 1),
		Stimulus: twoBinFrame(models.TagStimulus, 1, 5),
	})

	r = collectResult(t, engine, results)
	require.True(t, r.Empty, "a single pair cannot be ranked")
	assert.Equal(t, 1, r.Pairs)

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestStatsEngineDetectsEffectBin(t *testing.T) {
	history := NewPairedHistory()
	results := make(chan *models.MStatisticResult, 4)
	engine := NewStatsEngine(history, 0, 0, false, func(r *models.MStatisticResult) { results <- r })

	// Bin 1 carries a clear stimulus effect, bin 0 does not
	for i := 0; i < 8; i++ {
		jitter := float64(i) * 0.01
		history.Append(SpectralPair{
			Baseline: twoBinFrame(models.TagBaseline, 1+jitter, 1+jitter),
			Stimulus: twoBinFrame(models.TagStimulus, 1-jitter, 10+jitter),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	engine.Start(ctx, &wg)

	r := collectResult(t, engine, results)
	require.False(t, r.Empty)
	require.Equal(t, 8, r.Pairs)
	require.Len(t, r.Data, 2)

	assert.Greater(t, r.Data[1][0], 2.0, "effect bin should be strongly significant")
	assert.Greater(t, r.Data[1][0], r.Data[0][0])
	assert.Equal(t, 1.0, r.Correction)

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestStatsEngineBonferroniCorrection(t *testing.T) {
	history := NewPairedHistory()
	results := make(chan *models.MStatisticResult, 4)
	engine := NewStatsEngine(history, 0, 0, true, func(r *models.MStatisticResult) { results <- r })

	for i := 0; i < 8; i++ {
		history.Append(SpectralPair{
			Baseline: twoBinFrame(models.TagBaseline, 1, 1),
			Stimulus: twoBinFrame(models.TagStimulus, 1, 10),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	engine.Start(ctx, &wg)

	r := collectResult(t, engine, results)
	require.False(t, r.Empty)

	// 2 bins x 1 channel
	assert.Equal(t, 2.0, r.Correction)

	// Same data through the uncorrected engine must score higher
	uncorrected := NewStatsEngine(history, 0, 0, false, nil)
	ur := uncorrected.compute()
	assert.Greater(t, ur.Data[1][0], r.Data[1][0])

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestStatsEngineIdenticalDistributionsGoNegative(t *testing.T) {
	history := NewPairedHistory()
	for i := 0; i < 6; i++ {
		history.Append(SpectralPair{
			Baseline: twoBinFrame(models.TagBaseline, 3, 7),
			Stimulus: twoBinFrame(models.TagStimulus, 3, 7),
		})
	}

	// 2 bins x 1 channel: correction 2, so p=1 per bin corrects to 2 and
	// the statistic lands at -log10(2), less significant than chance.
	engine := NewStatsEngine(history, 0, 0, true, nil)
	r := engine.compute()

	require.False(t, r.Empty)
	assert.Equal(t, 2.0, r.Correction)
	for bin := 0; bin < 2; bin++ {
		assert.InDelta(t, -math.Log10(2), r.Data[bin][0], 1e-12)
	}

	// Without correction the same data sits exactly at zero
	uncorrected := NewStatsEngine(history, 0, 0, false, nil)
	ur := uncorrected.compute()
	assert.InDelta(t, 0.0, ur.Data[0][0], 1e-12)
}

// -----------------------------------------------------------------------------

func TestStatsEngineFrequencyRangeRestriction(t *testing.T) {
	history := NewPairedHistory()
	for i := 0; i < 4; i++ {
		history.Append(SpectralPair{
			Baseline: twoBinFrame(models.TagBaseline, 1, 1),
			Stimulus: twoBinFrame(models.TagStimulus, 5, 5),
		})
	}

	// Bins sit at 0 and 1 Hz; restrict to [0.5, 1.5]
	engine := NewStatsEngine(history, 0.5, 1.5, true, nil)
	r := engine.compute()

	require.False(t, r.Empty)
	require.Len(t, r.Data, 1, "only bin 1 falls in range")
	assert.InDelta(t, 1.0, r.FreqAxis.Offset, 1e-9)
	assert.Equal(t, 1.0, r.Correction, "correction counts selected bins only")
}

// -----------------------------------------------------------------------------

func TestStatsEngineRaiseCoalesces(t *testing.T) {
	engine := NewStatsEngine(NewPairedHistory(), 0, 0, true, nil)

	// Many raises before the loop runs collapse into one pending signal
	for i := 0; i < 10; i++ {
		engine.Raise()
	}
	assert.Len(t, engine.recompute, 1)
}
