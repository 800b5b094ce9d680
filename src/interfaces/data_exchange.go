package interfaces

import "ssvep-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing state with dashboard
// clients (HTTP server / websocket push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes an update to connected listeners and folds it into
	// the latest-state snapshot sent to newly connecting clients.
	Broadcast(update *models.MDashboardUpdate)

	// -----------------------------------------------------------------------------
	// UpdateLatestState folds an update into the snapshot without broadcasting
	UpdateLatestState(update *models.MDashboardUpdate)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
