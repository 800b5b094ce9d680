package models

// -----------------------------------------------------------------------------
// Dashboard broadcast envelope
// -----------------------------------------------------------------------------

// Update types carried by MDashboardUpdate.
const (
	UpdateInitial = "INITIAL"
	UpdateStats   = "STATS"
	UpdatePreview = "PREVIEW"
	UpdateMetrics = "METRICS"
	UpdateReset   = "RESET"
)

// MSignalPreview is a decimated, bounded snapshot of recent signal for
// display. Never used for statistics.
type MSignalPreview struct {
	Samples    [][]float64 `json:"samples"`
	SampleRate float64     `json:"sample_rate"`
	StartIndex int64       `json:"start_index"`
}

// -----------------------------------------------------------------------------

// MDashboardUpdate is the JSON envelope broadcast to dashboard clients.
// A connecting client receives one INITIAL with the latest known state,
// then incremental STATS / PREVIEW / METRICS / RESET updates.
type MDashboardUpdate struct {
	Type      string             `json:"type"`
	Statistic *MStatisticResult  `json:"statistic,omitempty"`
	Summary   *MStatisticSummary `json:"summary,omitempty"`
	Preview   *MSignalPreview    `json:"preview,omitempty"`
	Metrics   *MObserverMetrics  `json:"metrics,omitempty"`
	Session   *MSessionInfo      `json:"session,omitempty"`
	Timestamp int64              `json:"timestamp"`
}
