package interfaces

import (
	"context"
	"sync"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// ISignalSource interface for continuous multi-channel sample streams.
// -----------------------------------------------------------------------------

type ISignalSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// SampleRate returns the advertised rate of the raw stream in Hz
	SampleRate() float64

	// -----------------------------------------------------------------------------

	// ChannelLabels returns the channel names in stream order
	ChannelLabels() []string

	// -----------------------------------------------------------------------------

	// IsLive returns true if the source streams from real hardware or a
	// network gateway rather than a local generator
	IsLive() bool

	// -----------------------------------------------------------------------------

	// UpdateChannelLabels replaces the channel naming
	UpdateChannelLabels(labels []string) error

	// -----------------------------------------------------------------------------

	// Start begins the block streaming process
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push sample blocks to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the streaming process (manual stop)
	// Cancelling the context passed to Start is the preferred path.
	Stop() error
}
