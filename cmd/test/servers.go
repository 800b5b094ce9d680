package main

import (
	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
)

// -----------------------------------------------------------------------------

// startServers launches the dashboard server so the smoke session can be
// watched live on /ws while it runs. It depends on the exchange interface
// only, not the concrete server.
func startServers(srv interfaces.IDataExchanger, appLogger *logger.Logger) {
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()
}
