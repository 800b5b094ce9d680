package interfaces

import "ssvep-observer/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSession records the start of an observation session.
	SaveSession(session models.MSessionInfo) error

	// -----------------------------------------------------------------------------

	// SaveTriggerEvent records one stimulus trigger event within a session.
	SaveTriggerEvent(sessionID string, event models.MTriggerEvent) error

	// -----------------------------------------------------------------------------

	// SaveStatistic persists a statistic summary together with the
	// per-bin payload.
	SaveStatistic(sessionID string, result models.MStatisticResult, summary models.MStatisticSummary) error

	// -----------------------------------------------------------------------------

	// RecentSessions returns up to limit sessions, newest first.
	RecentSessions(limit int) ([]models.MSessionInfo, error)

	// -----------------------------------------------------------------------------

	// RecentStatistics returns up to limit summaries for a session, newest first.
	RecentStatistics(sessionID string, limit int) ([]models.MStatisticSummary, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
