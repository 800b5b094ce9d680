package models

import "time"

// MSessionInfo identifies one observation session: a single continuous run
// of a source through the pipeline.
type MSessionInfo struct {
	ID            string    `json:"id"`
	SourceName    string    `json:"source_name"`
	SampleRate    float64   `json:"sample_rate"`
	ChannelLabels []string  `json:"channel_labels"`
	StartedAt     time.Time `json:"started_at"`
}
