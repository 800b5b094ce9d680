package server

import (
	"encoding/json"
	"time"

	"ssvep-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Stimulus socket: the presentation program connects to /ws/stim and pushes
// trigger, event and log messages while it drives the flickering stimulus.
// One malformed message never drops the connection; the experiment keeps
// running and the message is skipped with a warning.
// -----------------------------------------------------------------------------

const (
	stimTypeTrigger = "TRIGGER"
	stimTypeEvent   = "EVENT"
	stimTypeLog     = "LOG"
	stimTypeLogJSON = "LOGJSON"
)

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleStimSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade stim websocket: %v", err)
		return
	}
	defer conn.Close()

	s.Logger.Info("Stimulus client connected from %s", c.ClientIP())

	conn.SetReadLimit(maxMessageSize)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.Logger.Info("Stimulus client disconnected: %v", err)
			return
		}

		if event := s.handleStimPayload(payload); event != nil {
			s.dispatchTrigger(*event)
		}
	}
}

// -----------------------------------------------------------------------------

// handleStimPayload decodes one raw stim message. Returns a trigger event
// for TRIGGER and EVENT messages, nil for log and unknown messages.
func (s *DashboardServer) handleStimPayload(payload []byte) *models.MTriggerEvent {
	var msg models.MStimMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.Logger.Warning("Skipping malformed stim message: %v", err)
		return nil
	}

	switch msg.Type {
	case stimTypeTrigger:
		if msg.Start == nil || msg.Stop == nil {
			s.Logger.Warning("Skipping TRIGGER '%s': missing start or stop", msg.Value)
			return nil
		}
		return &models.MTriggerEvent{
			Value: msg.Value,
			Period: &models.MTriggerPeriod{
				Start: *msg.Start,
				Stop:  *msg.Stop,
			},
			ReceivedAt: time.Now(),
		}

	case stimTypeEvent:
		return &models.MTriggerEvent{
			Value:      msg.Value,
			ReceivedAt: time.Now(),
		}

	case stimTypeLog:
		s.Logger.Info("Stim: %s", msg.Message)
		return nil

	case stimTypeLogJSON:
		s.Logger.Info("Stim: %s", string(payload))
		return nil

	default:
		s.Logger.Warning("Unknown stim message type: %q", msg.Type)
		return nil
	}
}

// -----------------------------------------------------------------------------

// dispatchTrigger forwards a decoded trigger to the pipeline and persists it.
func (s *DashboardServer) dispatchTrigger(event models.MTriggerEvent) {
	if s.OnTrigger != nil {
		s.OnTrigger(event)
	}
	if s.DB != nil {
		if err := s.DB.SaveTriggerEvent(s.Session.ID, event); err != nil {
			s.Logger.Error("Failed to persist trigger event: %v", err)
		}
	}
}
