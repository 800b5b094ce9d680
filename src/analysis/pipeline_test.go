package analysis

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"ssvep-observer/src/config"
	"ssvep-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// End-to-end: raw blocks with a 12 Hz stimulus buried in noise go in, a
// significant peak near 12 Hz comes out.
// -----------------------------------------------------------------------------

type streamDriver struct {
	pipeline  *Pipeline
	rng       *rand.Rand
	channels  int
	blockSize int
	rate      float64
	index     int64
}

// feed streams the given duration of signal through the pipeline, adding a
// unit 12 Hz sine on every channel when stim is set.
func (d *streamDriver) feed(seconds float64, stim bool) {
	total := int(seconds * d.rate)
	for fed := 0; fed < total; fed += d.blockSize {
		samples := make([][]float64, d.blockSize)
		for i := range samples {
			t := float64(d.index+int64(i)) / d.rate
			row := make([]float64, d.channels)
			for ch := range row {
				row[ch] = d.rng.NormFloat64() * 0.3
				if stim {
					row[ch] += math.Sin(2 * math.Pi * 12.0 * t)
				}
			}
			samples[i] = row
		}

		d.pipeline.IngestBlock(models.MSignalBlock{
			Samples:    samples,
			SampleRate: d.rate,
			StartIndex: d.index,
			SourceName: "test",
		})
		d.index += int64(d.blockSize)
	}
}

// -----------------------------------------------------------------------------

func TestPipelineDetectsStimulusFrequency(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Channels = 2
	cfg.Processing.MultipleComparisons = false

	var mu sync.Mutex
	var emitted []*models.MStatisticResult
	p := NewPipeline(cfg.MConfig, func(r *models.MStatisticResult) {
		mu.Lock()
		emitted = append(emitted, r)
		mu.Unlock()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	blocks := make(chan models.MSignalBlock)
	p.Start(ctx, blocks, wg)

	driver := &streamDriver{
		pipeline:  p,
		rng:       rand.New(rand.NewSource(42)),
		channels:  cfg.Source.Channels,
		blockSize: cfg.Source.BlockSize,
		rate:      cfg.Source.SampleRate,
	}

	const trials = 8
	for i := 0; i < trials; i++ {
		// Pre-trigger quiet period covering the baseline window, with some
		// slack so the first trial's filter transient settles.
		driver.feed(1.2, false)
		p.OnTrigger(models.MTriggerEvent{
			Value:      "12Hz",
			Period:     &models.MTriggerPeriod{Start: -1.0, Stop: 1.0},
			ReceivedAt: time.Now(),
		})
		driver.feed(1.0, true)
	}
	// Push the tail of the last span out of the sampler.
	driver.feed(0.4, false)

	require.Eventually(t, func() bool {
		latest := p.LatestStatistic()
		return latest != nil && !latest.Empty && latest.Pairs == trials
	}, 5*time.Second, 10*time.Millisecond, "expected %d pairs to accumulate", trials)

	result := p.LatestStatistic()
	assert.Equal(t, 1.0, result.Correction)

	summary := result.Summarize(2.0)
	assert.InDelta(t, 12.0, summary.PeakFreqHz, 1.5, "peak should sit at the stimulus frequency")
	assert.Greater(t, summary.PeakStatistic, 2.0, "8 cleanly separated trials should be significant")

	metrics := p.Metrics()
	assert.Equal(t, int64(trials), metrics.TriggersReceived)
	assert.Equal(t, int64(trials), metrics.RecordingsSampled)
	assert.Equal(t, int64(trials), metrics.PairsAppended)
	assert.Zero(t, metrics.DroppedNoTrigger)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, emitted, "every recompute must be emitted")
}

// -----------------------------------------------------------------------------

func TestPipelineResetClearsHistory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Channels = 1

	p := NewPipeline(cfg.MConfig, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	p.Start(ctx, make(chan models.MSignalBlock), wg)

	driver := &streamDriver{
		pipeline:  p,
		rng:       rand.New(rand.NewSource(7)),
		channels:  1,
		blockSize: cfg.Source.BlockSize,
		rate:      cfg.Source.SampleRate,
	}

	for i := 0; i < 2; i++ {
		driver.feed(1.2, false)
		p.OnTrigger(models.MTriggerEvent{
			Value:  "12Hz",
			Period: &models.MTriggerPeriod{Start: -1.0, Stop: 1.0},
		})
		driver.feed(1.0, true)
	}
	driver.feed(0.4, false)

	require.Eventually(t, func() bool {
		latest := p.LatestStatistic()
		return latest != nil && latest.Pairs == 2
	}, 5*time.Second, 10*time.Millisecond)

	p.Reset()

	require.Eventually(t, func() bool {
		latest := p.LatestStatistic()
		return latest != nil && latest.Empty
	}, 5*time.Second, 10*time.Millisecond, "reset must recompute to the empty state")
}

// -----------------------------------------------------------------------------

func TestPipelineEventRecordingIsDiscarded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source.Channels = 1

	p := NewPipeline(cfg.MConfig, nil, nil)

	driver := &streamDriver{
		pipeline:  p,
		rng:       rand.New(rand.NewSource(3)),
		channels:  1,
		blockSize: cfg.Source.BlockSize,
		rate:      cfg.Source.SampleRate,
	}

	driver.feed(2.5, false)
	// An EVENT carries no stimulus period; its recording is sampled
	// immediately but never reaches the pairing stage.
	p.OnTrigger(models.MTriggerEvent{Value: "blink"})
	driver.feed(0.5, false)

	metrics := p.Metrics()
	assert.Equal(t, int64(1), metrics.TriggersReceived)
	assert.Equal(t, int64(1), metrics.RecordingsSampled)
	assert.Equal(t, int64(1), metrics.DroppedNoTrigger)
	assert.Zero(t, metrics.PairsAppended)
}
