package dsp

import "ssvep-observer/src/models"

// -----------------------------------------------------------------------------
// Decimator keeps every k-th sample of the stream. The phase carries across
// block boundaries so the kept samples stay exactly k apart regardless of
// how the stream is chunked. Spectral aliasing is handled by the bandpass
// stage running before this one.
// -----------------------------------------------------------------------------

type Decimator struct {
	factor   int
	phase    int   // samples until the next kept one
	outIndex int64 // monotonic index of the next output sample
}

// -----------------------------------------------------------------------------

func NewDecimator(factor int) *Decimator {
	if factor < 1 {
		factor = 1
	}
	return &Decimator{factor: factor}
}

// -----------------------------------------------------------------------------

// Factor returns the decimation factor.
func (d *Decimator) Factor() int {
	return d.factor
}

// -----------------------------------------------------------------------------

// ProcessBlock returns a new block holding every k-th sample of the input,
// at the reduced rate. The output may be empty when the factor exceeds the
// remaining samples of the current phase.
func (d *Decimator) ProcessBlock(block models.MSignalBlock) models.MSignalBlock {
	out := models.MSignalBlock{
		SampleRate: block.SampleRate / float64(d.factor),
		StartIndex: d.outIndex,
		SourceName: block.SourceName,
	}

	for _, sample := range block.Samples {
		if d.phase == 0 {
			kept := make([]float64, len(sample))
			copy(kept, sample)
			out.Samples = append(out.Samples, kept)
		}
		d.phase = (d.phase + 1) % d.factor
	}

	d.outIndex += int64(len(out.Samples))
	return out
}

// -----------------------------------------------------------------------------

// Reset rewinds the phase and output index.
func (d *Decimator) Reset() {
	d.phase = 0
	d.outIndex = 0
}
