package analysis

import (
	"context"
	"sync"
	"sync/atomic"

	"ssvep-observer/src/dsp"
	"ssvep-observer/src/helpers"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/sampler"
)

// -----------------------------------------------------------------------------
// Pipeline wires the full analysis chain: raw blocks run through the bandpass
// and decimator into the trigger sampler; recordings are split into windows,
// transformed to spectra, paired, and folded into the rank-sum statistic.
// The pipeline owns every stage and is the single control surface exposed to
// the server (reset, refresh, latest result, metrics).
// -----------------------------------------------------------------------------

type Pipeline struct {
	Config *models.MConfig
	Logger *logger.Logger

	bandpass  *dsp.Bandpass
	decimator *dsp.Decimator
	sampler   *sampler.TriggerSampler
	splitter  *WindowSplitter
	estimator *dsp.SpectralEstimator
	pairSync  *PairSynchronizer
	history   *PairedHistory
	engine    *StatsEngine

	blocksIngested atomic.Int64
	onPreview      func(models.MSignalBlock)
}

// -----------------------------------------------------------------------------

// NewPipeline assembles the chain from configuration. emit receives every
// recomputed statistic; onPreview (optional) receives the preprocessed
// stream for the dashboard.
func NewPipeline(cfg *models.MConfig, emit func(*models.MStatisticResult), onPreview func(models.MSignalBlock)) *Pipeline {
	p := &Pipeline{
		Config:    cfg,
		Logger:    logger.NewLogger(cfg.LogLevel, "Pipeline"),
		onPreview: onPreview,
	}

	proc := cfg.Processing
	decimatedRate := cfg.Source.SampleRate / float64(proc.DecimateFactor)

	p.bandpass = dsp.NewBandpass(proc.FilterLowHz, proc.FilterHighHz, proc.FilterOrder, cfg.Source.Channels, cfg.Source.SampleRate)
	p.decimator = dsp.NewDecimator(proc.DecimateFactor)
	p.splitter = NewWindowSplitter(proc.IntegrationTime)
	p.estimator = dsp.NewSpectralEstimator()
	p.history = NewPairedHistory()
	p.engine = NewStatsEngine(p.history, proc.FreqRangeLowHz, proc.FreqRangeHighHz, proc.MultipleComparisons, emit)
	p.pairSync = NewPairSynchronizer(p.history, p.engine.Raise)
	p.sampler = sampler.NewTriggerSampler(decimatedRate, proc.BufferSeconds, proc.IntegrationTime, cfg.Source.Channels, p.onRecording)

	return p
}

// -----------------------------------------------------------------------------

// Start launches the pairing and recomputation goroutines and the ingest
// loop draining blocks.
func (p *Pipeline) Start(ctx context.Context, blocks <-chan models.MSignalBlock, wg *sync.WaitGroup) {
	p.pairSync.Start(ctx, wg)
	p.engine.Start(ctx, wg)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case block, ok := <-blocks:
				if !ok {
					return
				}
				p.IngestBlock(block)
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// IngestBlock runs one raw block through preprocessing into the sampler.
func (p *Pipeline) IngestBlock(block models.MSignalBlock) {
	p.blocksIngested.Add(1)

	p.bandpass.ProcessBlock(&block)
	decimated := p.decimator.ProcessBlock(block)
	if decimated.NumSamples() == 0 {
		return
	}

	p.sampler.OnBlock(decimated)
	if p.onPreview != nil {
		p.onPreview(decimated)
	}
}

// -----------------------------------------------------------------------------

// OnTrigger forwards a stimulus trigger to the sampler.
func (p *Pipeline) OnTrigger(event models.MTriggerEvent) {
	p.sampler.OnTrigger(event)
}

// -----------------------------------------------------------------------------

// onRecording splits a recording and pushes both spectral frames, or neither.
func (p *Pipeline) onRecording(rec models.MTimedRecording) {
	baseline, stimulus, ok := p.splitter.Split(rec)
	if !ok {
		return
	}

	baselineFrame, err := p.estimator.Estimate(baseline)
	if err != nil {
		p.Logger.Error("Recording '%s' dropped: %v", rec.Value, helpers.NewAnalysisError("baseline spectrum failed", err))
		return
	}
	stimulusFrame, err := p.estimator.Estimate(stimulus)
	if err != nil {
		p.Logger.Error("Recording '%s' dropped: %v", rec.Value, helpers.NewAnalysisError("stimulus spectrum failed", err))
		return
	}

	p.pairSync.PushPair(baselineFrame, stimulusFrame)
}

// -----------------------------------------------------------------------------

// Reset clears the paired history, queued frames, buffered signal and
// pending triggers, then raises a recomputation so consumers see the empty
// state immediately.
func (p *Pipeline) Reset() {
	p.Logger.Info("Resetting analysis state")
	p.pairSync.Reset()
	p.sampler.Reset()
	p.engine.Raise()
}

// -----------------------------------------------------------------------------

// Refresh raises a recomputation over the current history.
func (p *Pipeline) Refresh() {
	p.engine.Raise()
}

// -----------------------------------------------------------------------------

// LatestStatistic returns the most recent result, or nil before the first
// pass.
func (p *Pipeline) LatestStatistic() *models.MStatisticResult {
	return p.engine.Latest()
}

// -----------------------------------------------------------------------------

// Metrics returns a snapshot of the pipeline counters.
func (p *Pipeline) Metrics() models.MObserverMetrics {
	received, sampled, _ := p.sampler.Counters()
	_, droppedNoTrigger, droppedShort := p.splitter.Counters()
	passes, lastDuration := p.engine.Counters()

	return models.MObserverMetrics{
		BlocksIngested:       p.blocksIngested.Load(),
		TriggersReceived:     received,
		RecordingsSampled:    sampled,
		DroppedNoTrigger:     droppedNoTrigger,
		DroppedShortWindow:   droppedShort,
		PairsAppended:        p.pairSync.PairsAppended(),
		RecomputeCount:       passes,
		LastRecomputeSeconds: lastDuration.Seconds(),
	}
}
