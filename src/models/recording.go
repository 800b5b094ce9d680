package models

// -----------------------------------------------------------------------------
// Trigger-aligned recordings and the sub-windows sliced from them.
// -----------------------------------------------------------------------------

// Window tags. Baseline is the pre-onset reference period, stimulus the
// post-onset period.
const (
	TagBaseline = "baseline"
	TagStimulus = "stimulus"
)

// MTriggerInterval marks the stimulus period within a recording, in the
// recording's own time coordinates (seconds relative to stimulus onset).
type MTriggerInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// -----------------------------------------------------------------------------

// MTimedRecording is a trigger-aligned slice of the stream. Data is indexed
// [sample][channel]. Trigger is nil when no stimulus period was captured;
// such recordings are discarded downstream as a routine event.
type MTimedRecording struct {
	Data       [][]float64       `json:"data"`
	TimeAxis   MAxis             `json:"time_axis"`
	Trigger    *MTriggerInterval `json:"trigger,omitempty"`
	Value      string            `json:"value,omitempty"`
	SourceName string            `json:"source_name,omitempty"`
}

// -----------------------------------------------------------------------------

// MSubWindow is a fixed-length slice of a recording along the time axis,
// tagged baseline or stimulus. Both windows from one recording have equal
// length and disjoint sample ranges.
type MSubWindow struct {
	Data     [][]float64 `json:"data"`
	TimeAxis MAxis       `json:"time_axis"`
	Tag      string      `json:"tag"`
}

// -----------------------------------------------------------------------------

// MSpectralFrame is the frequency-domain representation of one sub-window.
// Data is indexed [bin][channel]. The tag and per-tag arrival order of the
// source sub-window are preserved.
type MSpectralFrame struct {
	Data     [][]float64 `json:"data"`
	FreqAxis MAxis       `json:"freq_axis"`
	Tag      string      `json:"tag"`
}

// -----------------------------------------------------------------------------

// NumBins returns the frequency bin count of the frame.
func (f MSpectralFrame) NumBins() int {
	return len(f.Data)
}

// -----------------------------------------------------------------------------

// NumChannels returns the channel count of the frame.
func (f MSpectralFrame) NumChannels() int {
	if len(f.Data) == 0 {
		return 0
	}
	return len(f.Data[0])
}
