package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"ssvep-observer/src/helpers"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/network"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// GatewaySource streams blocks from an upstream acquisition gateway over a
// websocket. The wire format is one JSON object per message carrying the
// samples of a block. Connection loss triggers a re-dial with backoff; the
// local stream index keeps counting monotonically across reconnects so
// downstream buffering stays consistent.
// -----------------------------------------------------------------------------

type wireBlock struct {
	Samples    [][]float64 `json:"samples"`
	SampleRate float64     `json:"sample_rate"`
	Labels     []string    `json:"labels,omitempty"`
}

type GatewaySource struct {
	Config       *models.MConfig
	SourceConfig models.MSourceConfig
	Connector    *network.WebsocketConnector
	Logger       *logger.Logger

	labels      []string
	labelsMu    sync.RWMutex
	sampleIndex int64

	cancelFunc context.CancelFunc
	ctx        context.Context
	outputChan chan<- models.MSignalBlock
	isRunning  atomic.Bool
	mu         sync.Mutex
}

// -----------------------------------------------------------------------------

func NewGatewaySource(cfg *models.MConfig, sourceCfg models.MSourceConfig, connector *network.WebsocketConnector) *GatewaySource {
	labels := make([]string, cfg.Source.Channels)
	for i := range labels {
		if i < len(cfg.Source.ChannelLabels) {
			labels[i] = cfg.Source.ChannelLabels[i]
		} else {
			labels[i] = fmt.Sprintf("ch%d", i+1)
		}
	}

	return &GatewaySource{
		Config:       cfg,
		SourceConfig: sourceCfg,
		Connector:    connector,
		Logger:       logger.NewLogger(cfg.LogLevel, "GatewaySource-"+sourceCfg.Name),
		labels:       labels,
	}
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) SampleRate() float64 {
	return s.Config.Source.SampleRate
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) ChannelLabels() []string {
	s.labelsMu.RLock()
	defer s.labelsMu.RUnlock()
	labels := make([]string, len(s.labels))
	copy(labels, s.labels)
	return labels
}

// -----------------------------------------------------------------------------

// IsLive returns true because the stream originates from real acquisition
// hardware behind the gateway
func (s *GatewaySource) IsLive() bool {
	return true
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) UpdateChannelLabels(labels []string) error {
	if len(labels) != s.Config.Source.Channels {
		return fmt.Errorf("expected %d labels, got %d", s.Config.Source.Channels, len(labels))
	}
	s.labelsMu.Lock()
	s.labels = labels
	s.labelsMu.Unlock()
	return nil
}

// -----------------------------------------------------------------------------

func (s *GatewaySource) Start(parentCtx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) error {
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
	s.Logger.Info("Started GatewaySource: %s -> %s", s.Name(), s.SourceConfig.URL)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (s *GatewaySource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning.Load() {
		return helpers.NewSourceError("source %s is not running", s.Name())
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning.Store(false)
	s.Logger.Info("Stopped GatewaySource: %s", s.Name())
	return nil
}

// -----------------------------------------------------------------------------

// runLoop dials the gateway and pumps blocks until the context is cancelled,
// re-dialing on connection loss.
func (s *GatewaySource) runLoop(ctx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) {
	defer wg.Done()

	for ctx.Err() == nil {
		conn, err := s.Connector.Dial(ctx, s.SourceConfig.URL)
		if err != nil {
			if ctx.Err() == nil {
				s.Logger.Error("Giving up on gateway %s: %v", s.SourceConfig.URL, err)
			}
			return
		}

		s.pump(ctx, conn, outputChan)
		conn.Close()
	}
}

// -----------------------------------------------------------------------------

// pump reads blocks off one connection until it drops or the context ends.
func (s *GatewaySource) pump(ctx context.Context, conn *websocket.Conn, outputChan chan<- models.MSignalBlock) {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.Logger.Warning("Gateway connection lost: %v", err)
			}
			return
		}

		var wb wireBlock
		if err := json.Unmarshal(payload, &wb); err != nil {
			s.Logger.Warning("Skipping malformed gateway message: %v", err)
			continue
		}
		if len(wb.Samples) == 0 {
			continue
		}
		if len(wb.Labels) == len(s.labels) {
			s.labelsMu.Lock()
			s.labels = wb.Labels
			s.labelsMu.Unlock()
		}

		sampleRate := wb.SampleRate
		if sampleRate == 0 {
			sampleRate = s.Config.Source.SampleRate
		}

		block := models.MSignalBlock{
			Samples:    wb.Samples,
			SampleRate: sampleRate,
			StartIndex: s.sampleIndex,
			SourceName: s.Name(),
		}
		s.sampleIndex += int64(len(wb.Samples))

		select {
		case outputChan <- block:
		case <-ctx.Done():
			return
		}
	}
}
