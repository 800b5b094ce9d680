package core

import (
	"math"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------

// NearestIndex returns the index i minimizing |axis.Value(i)| over n points,
// i.e. the sample closest to the axis zero. Earlier indices win ties.
func NearestIndex(axis models.MAxis, n int) int {
	best := 0
	bestDist := math.Inf(1)
	for i := 0; i < n; i++ {
		d := math.Abs(axis.Value(i))
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// BinRange returns the half-open bin index range [low, high) of the axis
// covering [lowHz, highHz]. A highHz of 0 selects all numBins bins.
func BinRange(axis models.MAxis, numBins int, lowHz, highHz float64) (int, int) {
	if highHz == 0 {
		return 0, numBins
	}

	low := 0
	for low < numBins && axis.Value(low) < lowHz {
		low++
	}
	high := low
	for high < numBins && axis.Value(high) <= highHz {
		high++
	}
	return low, high
}

// -----------------------------------------------------------------------------

// StackBin collects the value of one (bin, channel) cell across a set of
// spectral frames, in frame order.
func StackBin(frames []models.MSpectralFrame, bin, channel int) []float64 {
	values := make([]float64, 0, len(frames))
	for _, frame := range frames {
		if bin < frame.NumBins() && channel < frame.NumChannels() {
			values = append(values, frame.Data[bin][channel])
		}
	}
	return values
}
