package analysis

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"ssvep-observer/src/analysis/core"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// StatsEngine recomputes the rank-sum statistic map over the full paired
// history. Recomputation is level-triggered: raises while a pass is running
// coalesce into a single pending signal, so the engine always lags at most
// one pass behind the newest pair and never queues redundant work.
// -----------------------------------------------------------------------------

type StatsEngine struct {
	history             *PairedHistory
	freqRangeLowHz      float64
	freqRangeHighHz     float64 // 0 selects the full axis
	multipleComparisons bool
	emit                func(*models.MStatisticResult)
	logger              *logger.Logger

	recompute chan struct{}

	mu     sync.RWMutex
	latest *models.MStatisticResult

	recomputeCount   atomic.Int64
	lastComputeNanos atomic.Int64
}

// -----------------------------------------------------------------------------

func NewStatsEngine(history *PairedHistory, freqLowHz, freqHighHz float64, multipleComparisons bool, emit func(*models.MStatisticResult)) *StatsEngine {
	return &StatsEngine{
		history:             history,
		freqRangeLowHz:      freqLowHz,
		freqRangeHighHz:     freqHighHz,
		multipleComparisons: multipleComparisons,
		emit:                emit,
		logger:              logger.NewLogger("", "StatsEngine"),
		recompute:           make(chan struct{}, 1),
	}
}

// -----------------------------------------------------------------------------

// Raise requests a recomputation. Never blocks; a pending request already
// covers this one.
func (se *StatsEngine) Raise() {
	select {
	case se.recompute <- struct{}{}:
	default:
	}
}

// -----------------------------------------------------------------------------

// Latest returns the most recent result, or nil before the first pass.
func (se *StatsEngine) Latest() *models.MStatisticResult {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.latest
}

// -----------------------------------------------------------------------------

// Counters returns the lifetime pass count and the duration of the last pass.
func (se *StatsEngine) Counters() (passes int64, lastDuration time.Duration) {
	return se.recomputeCount.Load(), time.Duration(se.lastComputeNanos.Load())
}

// -----------------------------------------------------------------------------

// Start runs the recomputation loop until the context is cancelled.
func (se *StatsEngine) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case <-se.recompute:
				started := time.Now()
				result := se.compute()
				se.lastComputeNanos.Store(int64(time.Since(started)))
				se.recomputeCount.Add(1)

				se.mu.Lock()
				se.latest = result
				se.mu.Unlock()

				if se.emit != nil {
					se.emit(result)
				}
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// compute runs one full pass over the paired history. Fewer than two pairs
// cannot rank anything, so the pass reports an explicitly empty result
// rather than a map of meaningless values.
func (se *StatsEngine) compute() *models.MStatisticResult {
	baselines, stimuli := se.history.Snapshot()
	pairs := len(baselines)
	if len(stimuli) < pairs {
		pairs = len(stimuli)
	}

	if pairs < 2 {
		return &models.MStatisticResult{
			Empty:      true,
			Pairs:      pairs,
			ComputedAt: time.Now(),
		}
	}

	// The newest stimulus frame defines the bin grid; the shared estimator
	// configuration keeps every frame on the same grid.
	ref := stimuli[pairs-1]
	numBins := ref.NumBins()
	numChannels := ref.NumChannels()

	low, high := core.BinRange(ref.FreqAxis, numBins, se.freqRangeLowHz, se.freqRangeHighHz)
	selected := high - low
	if selected <= 0 || numChannels == 0 {
		se.logger.Warning("Frequency range [%g, %g] selects no bins", se.freqRangeLowHz, se.freqRangeHighHz)
		return &models.MStatisticResult{
			Empty:      true,
			Pairs:      pairs,
			ComputedAt: time.Now(),
		}
	}

	correction := 1.0
	if se.multipleComparisons {
		correction = float64(selected * numChannels)
	}

	data := make([][]float64, selected)
	for i := range data {
		data[i] = make([]float64, numChannels)
	}

	for b := low; b < high; b++ {
		for ch := 0; ch < numChannels; ch++ {
			x := core.StackBin(baselines[:pairs], b, ch)
			y := core.StackBin(stimuli[:pairs], b, ch)

			// A corrected p above 1 stays as is: it maps to a negative
			// statistic, less significant than chance.
			p := core.RankSumPValue(x, y) * correction
			if p <= 0 {
				p = math.SmallestNonzeroFloat64
			}

			data[b-low][ch] = -math.Log10(p)
		}
	}

	return &models.MStatisticResult{
		Data: data,
		FreqAxis: models.MAxis{
			Name:   ref.FreqAxis.Name,
			Gain:   ref.FreqAxis.Gain,
			Offset: ref.FreqAxis.Value(low),
		},
		Pairs:      pairs,
		Correction: correction,
		ComputedAt: time.Now(),
	}
}
