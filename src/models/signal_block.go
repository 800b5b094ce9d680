package models

// MSignalBlock is one fixed-size chunk of the continuous multi-channel
// stream. Samples is indexed [sample][channel]. StartIndex is the monotonic
// stream index of the first sample so downstream stages never depend on
// wall-clock arrival time.
type MSignalBlock struct {
	Samples    [][]float64 `json:"samples"`
	SampleRate float64     `json:"sample_rate"`
	StartIndex int64       `json:"start_index"`
	SourceName string      `json:"source_name"`
}

// -----------------------------------------------------------------------------

// NumSamples returns the number of samples in the block.
func (b MSignalBlock) NumSamples() int {
	return len(b.Samples)
}

// -----------------------------------------------------------------------------

// NumChannels returns the channel count (0 for an empty block).
func (b MSignalBlock) NumChannels() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}
