package dsp

import "math"

// -----------------------------------------------------------------------------
// Filter design: RBJ cookbook biquads and Butterworth cascades built from
// them. Cutoff frequencies are in Hz against the given sample rate.
// -----------------------------------------------------------------------------

// Lowpass returns RBJ cookbook lowpass coefficients for cutoff freq and Q.
func Lowpass(freq, q, sampleRate float64) Coefficients {
	omega := 2 * math.Pi * freq / sampleRate
	sinw, cosw := math.Sincos(omega)
	alpha := sinw / (2 * q)

	a0 := 1 + alpha
	return Coefficients{
		B0: (1 - cosw) / 2 / a0,
		B1: (1 - cosw) / a0,
		B2: (1 - cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// -----------------------------------------------------------------------------

// Highpass returns RBJ cookbook highpass coefficients for cutoff freq and Q.
func Highpass(freq, q, sampleRate float64) Coefficients {
	omega := 2 * math.Pi * freq / sampleRate
	sinw, cosw := math.Sincos(omega)
	alpha := sinw / (2 * q)

	a0 := 1 + alpha
	return Coefficients{
		B0: (1 + cosw) / 2 / a0,
		B1: -(1 + cosw) / a0,
		B2: (1 + cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
}

// -----------------------------------------------------------------------------

// firstOrderLowpass returns a one-pole lowpass via bilinear transform.
func firstOrderLowpass(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)
	return Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// -----------------------------------------------------------------------------

// firstOrderHighpass returns a one-pole highpass via bilinear transform.
func firstOrderHighpass(freq, sampleRate float64) Coefficients {
	k := math.Tan(math.Pi * freq / sampleRate)
	norm := 1 / (1 + k)
	return Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

// -----------------------------------------------------------------------------

// butterworthQ returns the Q of the i-th second-order stage of an order-n
// Butterworth cascade.
func butterworthQ(order, i int) float64 {
	return 1 / (2 * math.Sin(math.Pi*float64(2*i+1)/(2*float64(order))))
}

// -----------------------------------------------------------------------------

// ButterworthLowpass returns the section cascade of an order-n Butterworth
// lowpass. Odd orders get a trailing first-order stage.
func ButterworthLowpass(freq float64, order int, sampleRate float64) []Coefficients {
	if order < 1 {
		order = 1
	}

	coeffs := make([]Coefficients, 0, (order+1)/2)
	for i := 0; i < order/2; i++ {
		coeffs = append(coeffs, Lowpass(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 == 1 {
		coeffs = append(coeffs, firstOrderLowpass(freq, sampleRate))
	}
	return coeffs
}

// -----------------------------------------------------------------------------

// ButterworthHighpass returns the section cascade of an order-n Butterworth
// highpass. Odd orders get a trailing first-order stage.
func ButterworthHighpass(freq float64, order int, sampleRate float64) []Coefficients {
	if order < 1 {
		order = 1
	}

	coeffs := make([]Coefficients, 0, (order+1)/2)
	for i := 0; i < order/2; i++ {
		coeffs = append(coeffs, Highpass(freq, butterworthQ(order, i), sampleRate))
	}
	if order%2 == 1 {
		coeffs = append(coeffs, firstOrderHighpass(freq, sampleRate))
	}
	return coeffs
}
