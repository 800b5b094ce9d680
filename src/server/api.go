package server

import (
	"fmt"
	"sync"

	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	engine  *gin.Engine
	Control interfaces.IAnalysisControl
	DB      interfaces.IDatabase

	// OnTrigger receives every stimulus trigger decoded from /ws/stim
	OnTrigger func(models.MTriggerEvent)

	// Source control hooks, nil when source management is disabled
	StartSource func(name string) error
	StopSource  func(name string) error

	Session models.MSessionInfo

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardUpdate // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client

	// Local cache
	latestState *models.MDashboardUpdate
	stateMutex  sync.RWMutex
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, log *logger.Logger, control interfaces.IAnalysisControl, db interfaces.IDatabase, session models.MSessionInfo) *DashboardServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		Control: control,
		DB:      db,
		Session: session,
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan *models.MDashboardUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latestState: &models.MDashboardUpdate{
			Type:    models.UpdateInitial,
			Session: &session,
		},
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/metrics", s.getMetrics)
	s.engine.GET("/api/statistic", s.getStatistic)
	s.engine.GET("/api/sessions", s.getSessions)
	s.engine.POST("/api/control/reset", s.postReset)
	s.engine.POST("/api/control/refresh", s.postRefresh)
	s.engine.POST("/api/sources/:name/start", s.postSourceStart)
	s.engine.POST("/api/sources/:name/stop", s.postSourceStop)

	// WebSocket endpoints
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.GET("/ws/stim", s.handleStimSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop() error {
	// Clean shutdown
	close(s.broadcast)
	close(s.register)
	close(s.unregister)
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	timestamp := s.latestState.Timestamp
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":        "ok",
		"session_id":    s.Session.ID,
		"connections":   connections,
		"latest_update": timestamp,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"sample_rate":      s.Config.Source.SampleRate,
		"channels":         s.Config.Source.Channels,
		"channel_labels":   s.Session.ChannelLabels,
		"integration_time": s.Config.Processing.IntegrationTime,
		"filter_low_hz":    s.Config.Processing.FilterLowHz,
		"filter_high_hz":   s.Config.Processing.FilterHighHz,
		"decimate_factor":  s.Config.Processing.DecimateFactor,
		"signif_threshold": s.Config.Processing.SignifThreshold,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMetrics(c *gin.Context) {
	c.JSON(200, s.Control.Metrics())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getStatistic(c *gin.Context) {
	result := s.Control.LatestStatistic()
	if result == nil {
		c.JSON(200, gin.H{"empty": true, "pairs": 0})
		return
	}
	c.JSON(200, result)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSessions(c *gin.Context) {
	sessions, err := s.DB.RecentSessions(20)
	if err != nil {
		s.Logger.Error("Failed to list sessions: %v", err)
		c.JSON(500, gin.H{"error": "failed to list sessions"})
		return
	}
	c.JSON(200, sessions)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postReset(c *gin.Context) {
	s.Control.Reset()
	s.Broadcast(&models.MDashboardUpdate{Type: models.UpdateReset})
	c.JSON(200, gin.H{"status": "reset"})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postRefresh(c *gin.Context) {
	s.Control.Refresh()
	c.JSON(200, gin.H{"status": "refreshing"})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postSourceStart(c *gin.Context) {
	if s.StartSource == nil {
		c.JSON(501, gin.H{"error": "source control not available"})
		return
	}
	name := c.Param("name")
	if err := s.StartSource(name); err != nil {
		c.JSON(409, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "started", "source": name})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postSourceStop(c *gin.Context) {
	if s.StopSource == nil {
		c.JSON(501, gin.H{"error": "source control not available"})
		return
	}
	name := c.Param("name")
	if err := s.StopSource(name); err != nil {
		c.JSON(409, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "stopped", "source": name})
}
