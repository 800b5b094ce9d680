package utils

import "math"

// -----------------------------------------------------------------------------

// Constants and helper functions for buffer sizing and memory management.
const (
	DefaultRetentionDays = 7

	// DefaultBufferSeconds is the span of raw signal the sampler keeps
	// around for trigger-aligned extraction.
	DefaultBufferSeconds = 20.0

	// DefaultPreviewSamples caps the number of samples forwarded to the
	// dashboard signal preview per channel.
	DefaultPreviewSamples = 1000
)

// -----------------------------------------------------------------------------

// CalculateBufferCapacity returns the number of samples a rolling buffer
// needs to cover the given span at the given rate.
func CalculateBufferCapacity(sampleRate, seconds float64) int {
	return int(math.Ceil(sampleRate * seconds))
}

// -----------------------------------------------------------------------------

// NextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
