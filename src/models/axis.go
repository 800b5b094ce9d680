package models

// -----------------------------------------------------------------------------
// Axis metadata shared by time-domain and frequency-domain arrays.
// -----------------------------------------------------------------------------

// MAxis describes one named array axis. Gain is the spacing between
// consecutive samples in axis units (seconds per sample for a time axis,
// hertz per bin for a frequency axis). Offset is the axis value of index 0.
type MAxis struct {
	Name   string  `json:"name"`
	Gain   float64 `json:"gain"`
	Offset float64 `json:"offset"`
}

// -----------------------------------------------------------------------------

// Value returns the axis coordinate of index i.
func (a MAxis) Value(i int) float64 {
	return float64(i)*a.Gain + a.Offset
}
