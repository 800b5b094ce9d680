package dsp

import "ssvep-observer/src/models"

// -----------------------------------------------------------------------------
// Bandpass is a per-channel Butterworth band-pass filter: a highpass cascade
// at the low edge followed by a lowpass cascade at the high edge. Each
// channel keeps its own state so blocks of the continuous stream can be
// filtered as they arrive.
// -----------------------------------------------------------------------------

type Bandpass struct {
	lowHz      float64
	highHz     float64
	order      int
	sampleRate float64
	channels   []*channelFilter
}

type channelFilter struct {
	highpass *Chain
	lowpass  *Chain
}

// -----------------------------------------------------------------------------

func NewBandpass(lowHz, highHz float64, order, numChannels int, sampleRate float64) *Bandpass {
	bp := &Bandpass{
		lowHz:      lowHz,
		highHz:     highHz,
		order:      order,
		sampleRate: sampleRate,
		channels:   make([]*channelFilter, numChannels),
	}
	for i := range bp.channels {
		bp.channels[i] = &channelFilter{
			highpass: NewChain(ButterworthHighpass(lowHz, order, sampleRate)),
			lowpass:  NewChain(ButterworthLowpass(highHz, order, sampleRate)),
		}
	}
	return bp
}

// -----------------------------------------------------------------------------

// ProcessBlock filters the block's samples in place, channel by channel.
func (bp *Bandpass) ProcessBlock(block *models.MSignalBlock) {
	numSamples := block.NumSamples()
	if numSamples == 0 {
		return
	}

	buf := make([]float64, numSamples)
	for ch, filter := range bp.channels {
		if ch >= block.NumChannels() {
			break
		}
		for i := 0; i < numSamples; i++ {
			buf[i] = block.Samples[i][ch]
		}
		filter.highpass.ProcessBlock(buf)
		filter.lowpass.ProcessBlock(buf)
		for i := 0; i < numSamples; i++ {
			block.Samples[i][ch] = buf[i]
		}
	}
}

// -----------------------------------------------------------------------------

// Reset clears the filter state on every channel.
func (bp *Bandpass) Reset() {
	for _, filter := range bp.channels {
		filter.highpass.Reset()
		filter.lowpass.Reset()
	}
}
