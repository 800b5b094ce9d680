package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"ssvep-observer/src/logger"
)

// -----------------------------------------------------------------------------
// StreamWatchdog flags a stalled signal stream. A live source delivers one
// block every blockSize/sampleRate seconds; when no block arrives for several
// multiples of that period the stream is considered stale and the callback
// fires once per outage.
// -----------------------------------------------------------------------------

type StreamWatchdog struct {
	timeout   time.Duration
	lastKick  atomic.Int64 // unix nanos of the last block
	stale     atomic.Bool
	onStale   func(elapsed time.Duration)
	onRecover func()
	logger    *logger.Logger
}

// -----------------------------------------------------------------------------

// NewStreamWatchdog builds a watchdog for the given block cadence. A timeout
// of 10 block periods tolerates scheduler jitter without masking a real stall.
func NewStreamWatchdog(blockPeriod time.Duration, onStale func(time.Duration), onRecover func()) *StreamWatchdog {
	timeout := 10 * blockPeriod
	if timeout < time.Second {
		timeout = time.Second
	}

	wd := &StreamWatchdog{
		timeout:   timeout,
		onStale:   onStale,
		onRecover: onRecover,
		logger:    logger.NewLogger("", "StreamWatchdog"),
	}
	wd.lastKick.Store(time.Now().UnixNano())
	return wd
}

// -----------------------------------------------------------------------------

// Kick records block arrival. Safe to call from the ingest goroutine.
func (wd *StreamWatchdog) Kick() {
	wd.lastKick.Store(time.Now().UnixNano())
	if wd.stale.CompareAndSwap(true, false) {
		wd.logger.Info("Signal stream recovered")
		if wd.onRecover != nil {
			wd.onRecover()
		}
	}
}

// -----------------------------------------------------------------------------

// IsStale reports whether the stream is currently flagged as stalled.
func (wd *StreamWatchdog) IsStale() bool {
	return wd.stale.Load()
}

// -----------------------------------------------------------------------------

// Start runs the staleness check loop until the context is cancelled.
func (wd *StreamWatchdog) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(wd.timeout / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				elapsed := time.Duration(time.Now().UnixNano() - wd.lastKick.Load())
				if elapsed > wd.timeout && wd.stale.CompareAndSwap(false, true) {
					wd.logger.Warning("Signal stream stale: no blocks for %v", elapsed.Round(time.Millisecond))
					if wd.onStale != nil {
						wd.onStale(elapsed)
					}
				}
			}
		}
	}()
}
