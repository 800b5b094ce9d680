package simulator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"ssvep-observer/src/helpers"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// SimulatorSource generates a synthetic multi-channel stream at the
// configured rate: background alpha rhythm plus Gaussian noise per channel,
// and an optional flicker response at StimulusHz that can be toggled at
// runtime. Blocks are paced by a ticker at the true block cadence.
// -----------------------------------------------------------------------------

type SimulatorSource struct {
	Config       *models.MConfig
	SourceConfig models.MSourceConfig
	Logger       *logger.Logger

	// StimulusHz is the flicker frequency injected while the stimulus is
	// active.
	StimulusHz float64

	labels      []string
	labelsMu    sync.RWMutex
	stimActive  atomic.Bool
	sampleIndex int64

	cancelFunc context.CancelFunc
	ctx        context.Context
	outputChan chan<- models.MSignalBlock
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewSimulatorSource(cfg *models.MConfig, sourceCfg models.MSourceConfig) *SimulatorSource {
	labels := make([]string, cfg.Source.Channels)
	for i := range labels {
		if i < len(cfg.Source.ChannelLabels) {
			labels[i] = cfg.Source.ChannelLabels[i]
		} else {
			labels[i] = fmt.Sprintf("ch%d", i+1)
		}
	}

	return &SimulatorSource{
		Config:       cfg,
		SourceConfig: sourceCfg,
		Logger:       logger.NewLogger(cfg.LogLevel, "SimulatorSource-"+sourceCfg.Name),
		StimulusHz:   12.0,
		labels:       labels,
	}
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) SampleRate() float64 {
	return s.Config.Source.SampleRate
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) ChannelLabels() []string {
	s.labelsMu.RLock()
	defer s.labelsMu.RUnlock()
	labels := make([]string, len(s.labels))
	copy(labels, s.labels)
	return labels
}

// -----------------------------------------------------------------------------

// IsLive returns false because the stream is generated locally
func (s *SimulatorSource) IsLive() bool {
	return false
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) UpdateChannelLabels(labels []string) error {
	if len(labels) != s.Config.Source.Channels {
		return fmt.Errorf("expected %d labels, got %d", s.Config.Source.Channels, len(labels))
	}
	s.labelsMu.Lock()
	s.labels = labels
	s.labelsMu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

// SetStimulusActive toggles the flicker response component. Wired to the
// stimulus triggers so simulated sessions produce a detectable effect.
func (s *SimulatorSource) SetStimulusActive(active bool) {
	s.stimActive.Store(active)
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) Start(parentCtx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning.Load() {
		return helpers.NewSourceError("source %s is already running", s.Name())
	}

	// Derive a context so we can stop just this source via Stop()
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancelFunc = cancel
	s.ctx = ctx
	s.outputChan = outputChan
	s.isRunning.Store(true)

	wg.Add(1)
	go s.runLoop(ctx, outputChan, wg)
	s.Logger.Info("Started SimulatorSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (s *SimulatorSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return helpers.NewSourceError("source %s is not running", s.Name())
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped SimulatorSource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

func (s *SimulatorSource) runLoop(ctx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) {
	defer wg.Done()

	blockSize := s.Config.Source.BlockSize
	sampleRate := s.Config.Source.SampleRate
	blockPeriod := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))

	rng := rand.New(rand.NewSource(s.SourceConfig.Seed))

	ticker := time.NewTicker(blockPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			block := s.generateBlock(blockSize, sampleRate, rng)
			select {
			case outputChan <- block:
			case <-ctx.Done():
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

// generateBlock synthesizes one block: 10 Hz background with per-channel
// amplitude falloff, white noise, and the flicker component when active.
func (s *SimulatorSource) generateBlock(blockSize int, sampleRate float64, rng *rand.Rand) models.MSignalBlock {
	channels := s.Config.Source.Channels
	stimActive := s.stimActive.Load()

	samples := make([][]float64, blockSize)
	for i := range samples {
		t := float64(s.sampleIndex+int64(i)) / sampleRate
		row := make([]float64, channels)
		for ch := 0; ch < channels; ch++ {
			amp := 1.0 / float64(ch+1)
			v := amp*math.Sin(2*math.Pi*10*t) + rng.NormFloat64()*0.5
			if stimActive {
				v += 0.8 * math.Sin(2*math.Pi*s.StimulusHz*t)
			}
			row[ch] = v
		}
		samples[i] = row
	}

	block := models.MSignalBlock{
		Samples:    samples,
		SampleRate: sampleRate,
		StartIndex: s.sampleIndex,
		SourceName: s.Name(),
	}
	s.sampleIndex += int64(blockSize)
	return block
}
