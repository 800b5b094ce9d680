package models

import "time"

// -----------------------------------------------------------------------------

// MTriggerPeriod is the (start, stop) span in seconds relative to stimulus
// onset that a trigger event asks the sampler to capture.
type MTriggerPeriod struct {
	Start float64 `json:"start"`
	Stop  float64 `json:"stop"`
}

// -----------------------------------------------------------------------------

// MTriggerEvent is a stimulus event from the presenter. Period is nil for
// bare events; the sampler still emits a recording for them, which the
// splitter then drops as routine.
type MTriggerEvent struct {
	Value      string          `json:"value,omitempty"`
	Period     *MTriggerPeriod `json:"period,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// -----------------------------------------------------------------------------

// MStimMessage is the raw JSON payload accepted on the stimulus websocket.
// Type is one of TRIGGER, EVENT, LOG, LOGJSON; anything else is ignored
// with a warning.
type MStimMessage struct {
	Type    string   `json:"type"`
	Value   string   `json:"value,omitempty"`
	Start   *float64 `json:"start,omitempty"`
	Stop    *float64 `json:"stop,omitempty"`
	Message string   `json:"message,omitempty"`
}
