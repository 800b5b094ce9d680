package utils

import (
	"fmt"
	"sync"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// SignalRing is a fixed-size circular buffer over the continuous multi-channel
// stream. Writes are addressed by an absolute monotonic sample index so
// trigger-aligned extraction works regardless of how long the stream has been
// running. True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

var (
	ErrRangeEvicted  = fmt.Errorf("requested range has been evicted from the buffer")
	ErrRangeNotReady = fmt.Errorf("requested range is not fully buffered yet")
)

type SignalRing struct {
	data     [][]float64 // rows x channels
	capacity int
	channels int
	head     int64 // Absolute index of the next sample to be written
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

// NewSignalRing creates a buffer holding capacity samples of channels values.
func NewSignalRing(capacity, channels int) *SignalRing {
	if capacity <= 0 {
		capacity = 1000 // Default reasonable size
	}

	data := make([][]float64, capacity)
	for i := range data {
		data[i] = make([]float64, channels)
	}

	return &SignalRing{
		data:     data,
		capacity: capacity,
		channels: channels,
	}
}

// -----------------------------------------------------------------------------

// Write appends a block of samples, overwriting the oldest data on wrap.
func (sr *SignalRing) Write(block models.MSignalBlock) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	for _, sample := range block.Samples {
		row := sr.data[sr.head%int64(sr.capacity)]
		copy(row, sample)
		sr.head++
	}
}

// -----------------------------------------------------------------------------

// Head returns the absolute index of the next sample to be written.
func (sr *SignalRing) Head() int64 {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return sr.head
}

// -----------------------------------------------------------------------------

// Capacity returns the fixed number of samples the ring can hold.
func (sr *SignalRing) Capacity() int {
	return sr.capacity
}

// -----------------------------------------------------------------------------

// Extract copies samples [start, end) by absolute index. Ranges that reach
// behind the eviction horizon fail with ErrRangeEvicted; ranges that extend
// past the write head fail with ErrRangeNotReady.
func (sr *SignalRing) Extract(start, end int64) ([][]float64, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid sample range [%d, %d)", start, end)
	}
	if end > sr.head {
		return nil, ErrRangeNotReady
	}
	oldest := sr.head - int64(sr.capacity)
	if start < oldest {
		return nil, ErrRangeEvicted
	}

	result := make([][]float64, end-start)
	for i := range result {
		row := sr.data[(start+int64(i))%int64(sr.capacity)]
		result[i] = make([]float64, sr.channels)
		copy(result[i], row)
	}

	return result, nil
}

// -----------------------------------------------------------------------------

// Latest copies the most recent n samples (fewer if the stream is younger).
func (sr *SignalRing) Latest(n int) ([][]float64, int64) {
	sr.mu.RLock()
	head := sr.head
	sr.mu.RUnlock()

	start := head - int64(n)
	if start < 0 {
		start = 0
	}
	if head-int64(sr.capacity) > start {
		start = head - int64(sr.capacity)
	}

	data, err := sr.Extract(start, head)
	if err != nil {
		return [][]float64{}, head
	}
	return data, start
}

// -----------------------------------------------------------------------------

// Reset discards all buffered data and rewinds the head.
func (sr *SignalRing) Reset() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.head = 0
}
