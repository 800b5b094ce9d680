package server

import (
	"net/http"

	"ssvep-observer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send initial state on connect
			s.stateMutex.RLock()
			if s.latestState != nil {
				initial := *s.latestState
				initial.Type = models.UpdateInitial
				client.send <- &initial
			}
			s.stateMutex.RUnlock()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Fold into state and broadcast
			s.stateMutex.Lock()
			s.foldLocked(message)
			s.stateMutex.Unlock()

			// Broadcast to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues an update for the Hub loop. Never blocks the caller as
// long as the buffered queue has room.
func (s *DashboardServer) Broadcast(update *models.MDashboardUpdate) {
	if update.Timestamp == 0 {
		update.Timestamp = nowMillis()
	}
	s.broadcast <- update
}

// -----------------------------------------------------------------------------

// UpdateLatestState folds an update into the snapshot sent to newly
// connecting clients, without broadcasting it.
func (s *DashboardServer) UpdateLatestState(update *models.MDashboardUpdate) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.foldLocked(update)
}

// -----------------------------------------------------------------------------

// foldLocked merges the non-nil parts of an update into the latest state.
// Caller holds stateMutex.
func (s *DashboardServer) foldLocked(update *models.MDashboardUpdate) {
	if s.latestState == nil {
		s.latestState = &models.MDashboardUpdate{Type: models.UpdateInitial}
	}

	if update.Statistic != nil {
		s.latestState.Statistic = update.Statistic
		s.latestState.Summary = update.Summary
	}
	if update.Preview != nil {
		s.latestState.Preview = update.Preview
	}
	if update.Metrics != nil {
		s.latestState.Metrics = update.Metrics
	}
	if update.Session != nil {
		s.latestState.Session = update.Session
	}
	if update.Type == models.UpdateReset {
		s.latestState.Statistic = nil
		s.latestState.Summary = nil
	}
	s.latestState.Timestamp = update.Timestamp
}

// -----------------------------------------------------------------------------

// DropPreview clears the cached signal preview. Registered as a memory
// pressure callback.
func (s *DashboardServer) DropPreview() {
	s.stateMutex.Lock()
	s.latestState.Preview = nil
	s.stateMutex.Unlock()
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan *models.MDashboardUpdate, 256),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
