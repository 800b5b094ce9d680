package dsp

import (
	"fmt"
	"math"
	"sync"

	"ssvep-observer/src/models"
	"ssvep-observer/src/utils"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
)

// -----------------------------------------------------------------------------
// SpectralEstimator turns a tagged time sub-window into a single-sided
// magnitude spectrum per channel. Per channel: subtract the mean, apply a
// Hann window, zero-pad to the next power of two and take |FFT|. Both
// baseline and stimulus windows share one estimator configuration, so their
// frames always line up bin for bin.
// -----------------------------------------------------------------------------

type SpectralEstimator struct {
	mu      sync.Mutex
	plans   map[int]*algofft.Plan[complex128]
	hannByN map[int][]float64
}

// -----------------------------------------------------------------------------

func NewSpectralEstimator() *SpectralEstimator {
	return &SpectralEstimator{
		plans:   make(map[int]*algofft.Plan[complex128]),
		hannByN: make(map[int][]float64),
	}
}

// -----------------------------------------------------------------------------

func (se *SpectralEstimator) planFor(fftSize int) (*algofft.Plan[complex128], error) {
	if plan, ok := se.plans[fftSize]; ok {
		return plan, nil
	}
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create FFT plan of size %d: %w", fftSize, err)
	}
	se.plans[fftSize] = plan
	return plan, nil
}

// -----------------------------------------------------------------------------

func (se *SpectralEstimator) hann(n int) []float64 {
	if coeffs, ok := se.hannByN[n]; ok {
		return coeffs
	}
	coeffs := make([]float64, n)
	if n == 1 {
		coeffs[0] = 1
	} else {
		for i := range coeffs {
			coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		}
	}
	se.hannByN[n] = coeffs
	return coeffs
}

// -----------------------------------------------------------------------------

// Estimate computes the magnitude spectrum of every channel of the window.
// The resulting frame keeps the window's tag; its frequency axis starts at
// 0 Hz with a bin width of sampleRate/fftSize.
func (se *SpectralEstimator) Estimate(window models.MSubWindow) (models.MSpectralFrame, error) {
	numSamples := len(window.Data)
	if numSamples == 0 {
		return models.MSpectralFrame{}, fmt.Errorf("cannot estimate spectrum of an empty window")
	}
	numChannels := len(window.Data[0])
	sampleRate := 1.0 / window.TimeAxis.Gain

	fftSize := utils.NextPowerOfTwo(numSamples)
	numBins := fftSize/2 + 1

	se.mu.Lock()
	defer se.mu.Unlock()

	plan, err := se.planFor(fftSize)
	if err != nil {
		return models.MSpectralFrame{}, err
	}
	hann := se.hann(numSamples)

	bins := make([][]float64, numBins)
	for b := range bins {
		bins[b] = make([]float64, numChannels)
	}

	buf := make([]float64, numSamples)
	in := make([]complex128, fftSize)
	out := make([]complex128, fftSize)
	re := make([]float64, numBins)
	im := make([]float64, numBins)
	mag := make([]float64, numBins)

	for ch := 0; ch < numChannels; ch++ {
		mean := 0.0
		for i := 0; i < numSamples; i++ {
			buf[i] = window.Data[i][ch]
			mean += buf[i]
		}
		mean /= float64(numSamples)
		for i := range buf {
			buf[i] -= mean
		}

		vecmath.MulBlockInPlace(buf, hann)

		for i := 0; i < numSamples; i++ {
			in[i] = complex(buf[i], 0)
		}
		for i := numSamples; i < fftSize; i++ {
			in[i] = 0
		}

		if err := plan.Forward(out, in); err != nil {
			return models.MSpectralFrame{}, fmt.Errorf("FFT forward transform failed: %w", err)
		}

		for b := 0; b < numBins; b++ {
			re[b] = real(out[b])
			im[b] = imag(out[b])
		}
		vecmath.Magnitude(mag, re, im)

		for b := 0; b < numBins; b++ {
			bins[b][ch] = mag[b]
		}
	}

	return models.MSpectralFrame{
		Data: bins,
		FreqAxis: models.MAxis{
			Name: "freq",
			Gain: sampleRate / float64(fftSize),
		},
		Tag: window.Tag,
	}, nil
}
