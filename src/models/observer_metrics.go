package models

// MObserverMetrics represents the performance counters of the signal
// processing pipeline.
type MObserverMetrics struct {
	BlocksIngested       int64   `json:"blocks_ingested"`
	TriggersReceived     int64   `json:"triggers_received"`
	RecordingsSampled    int64   `json:"recordings_sampled"`
	DroppedNoTrigger     int64   `json:"dropped_no_trigger"`
	DroppedShortWindow   int64   `json:"dropped_short_window"`
	PairsAppended        int64   `json:"pairs_appended"`
	RecomputeCount       int64   `json:"recompute_count"`
	LastRecomputeSeconds float64 `json:"last_recompute_seconds"`
}
