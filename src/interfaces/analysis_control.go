package interfaces

import "ssvep-observer/src/models"

// -----------------------------------------------------------------------------
// IAnalysisControl is the operator surface of the statistics pipeline.
// Reset and Refresh are never erroneous regardless of current state.
// -----------------------------------------------------------------------------

type IAnalysisControl interface {

	// Reset clears the paired spectral history atomically and forces a
	// recompute reflecting the empty state. Idempotent.
	Reset()

	// -----------------------------------------------------------------------------

	// Refresh forces a recompute over the current history.
	Refresh()

	// -----------------------------------------------------------------------------

	// LatestStatistic returns the most recently emitted result, or nil
	// before the first recompute.
	LatestStatistic() *models.MStatisticResult

	// -----------------------------------------------------------------------------

	// Metrics returns a snapshot of the pipeline counters.
	Metrics() models.MObserverMetrics
}
