package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ssvep-observer/src/analysis"
	"ssvep-observer/src/config"
	"ssvep-observer/src/data_source"
	"ssvep-observer/src/data_source/gateway"
	"ssvep-observer/src/data_source/simulator"
	"ssvep-observer/src/helpers"
	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/network"
	"ssvep-observer/src/server"
	"ssvep-observer/src/storage"
	"ssvep-observer/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 1. Storage
	var backend interfaces.IDatabase

	switch cfg.Storage.DBType {
	case "postgres":
		backend, err = storage.NewPostgresDB(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		backend, err = storage.NewSQLiteDB(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := backend.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}

	// Trigger and statistic writes go through the async queue so the
	// recompute loop never waits on the database
	var db interfaces.IDatabase = storage.NewAsyncWriter(backend, appLogger)
	defer db.Close()

	// 2. Signal sources
	connector := network.NewWebsocketConnector(cfg.MConfig, appLogger)

	var sources []interfaces.ISignalSource
	var simulators []*simulator.SimulatorSource
	for _, srcCfg := range cfg.Source.Sources {
		switch srcCfg.Kind {
		case "gateway":
			sources = append(sources, gateway.NewGatewaySource(cfg.MConfig, srcCfg, connector))
		default:
			sim := simulator.NewSimulatorSource(cfg.MConfig, srcCfg)
			simulators = append(simulators, sim)
			sources = append(sources, sim)
		}
	}
	manager := datasource.NewSourceManager(sources, appLogger)

	// 3. Session bookkeeping
	session := models.MSessionInfo{
		ID:            uuid.NewString(),
		SourceName:    sources[0].Name(),
		SampleRate:    cfg.Source.SampleRate,
		ChannelLabels: sources[0].ChannelLabels(),
		StartedAt:     time.Now().UTC(),
	}
	errorHandler := helpers.NewErrorHandler()
	if _, err := errorHandler.ExecuteWithRetry("save session", func() (interface{}, error) {
		return nil, db.SaveSession(session)
	}, 3); err != nil {
		appLogger.Error("Failed to persist session: %v", err)
	}

	// 4. Watchdog for stream staleness
	blockPeriod := time.Duration(float64(cfg.Source.BlockSize) / cfg.Source.SampleRate * float64(time.Second))
	watchdog := utils.NewStreamWatchdog(blockPeriod, nil, nil)

	// 5. Analysis pipeline and server. The statistic callback closes over
	// the server variable assigned right below.
	var srv *server.DashboardServer

	pipeline := analysis.NewPipeline(cfg.MConfig,
		func(result *models.MStatisticResult) {
			update := srv.StatisticUpdate(result)
			srv.Broadcast(update)
			if update.Summary != nil {
				if err := db.SaveStatistic(session.ID, *result, *update.Summary); err != nil {
					appLogger.Error("Failed to persist statistic: %v", err)
				}
			}
		},
		func(block models.MSignalBlock) {
			watchdog.Kick()
			srv.Broadcast(server.PreviewUpdate(block, utils.DefaultPreviewSamples))
		})

	srv = server.NewDashboardServer(cfg.MConfig, appLogger, pipeline, db, session)
	srv.StartSource = manager.StartSource
	srv.StopSource = manager.StopSource
	srv.OnTrigger = func(event models.MTriggerEvent) {
		pipeline.OnTrigger(event)

		// Simulated sources flicker for the trigger's stimulus period so
		// a local session produces a detectable response.
		if event.Period != nil {
			for _, sim := range simulators {
				sim.SetStimulusActive(true)
			}
			time.AfterFunc(time.Duration(event.Period.Stop*float64(time.Second)), func() {
				for _, sim := range simulators {
					sim.SetStimulusActive(false)
				}
			})
		}
	}

	// 6. Memory guard: trims the dashboard preview, never analysis data
	memManager := utils.NewMemoryManager(helpers.GetRecommendedMemoryLimit())
	memManager.OnPressure(srv.DropPreview)

	// 7. Start everything
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	blocksChan := make(chan models.MSignalBlock, 100)

	pipeline.Start(ctx, blocksChan, wrapWg)
	watchdog.Start(ctx, wrapWg)

	if err := manager.Start(ctx, blocksChan, wrapWg); err != nil {
		appLogger.Critical("Failed to start sources: %v", err)
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Observer running on %s:%d (session %s)", cfg.Host, cfg.Port, session.ID)

	// 8. Housekeeping loop
	metricsTicker := time.NewTicker(5 * time.Second)
	defer metricsTicker.Stop()
	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-metricsTicker.C:
			srv.Broadcast(server.MetricsUpdate(pipeline.Metrics()))
			memManager.CheckMemoryLimits()

		case <-cleanupTicker.C:
			if err := db.CleanupOldData(); err != nil {
				appLogger.Error("Cleanup failed: %v", err)
			}

		case <-quit:
			appLogger.Info("Shutting down...")
			manager.Stop()
			cancel()
			wrapWg.Wait()
			srv.Stop()
			return
		}
	}
}
