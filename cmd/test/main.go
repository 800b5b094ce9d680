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
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/server"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Offline smoke harness: runs the full chain against simulated sources and a
// scripted stimulus session, so the whole path from stream to statistic can
// be exercised without acquisition hardware or a presentation program.
// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	triggers := flag.Int("triggers", 10, "number of scripted stimulus triggers")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// 4. Setup Components
	db, err := setupDatabase(conf.MConfig, appLogger)
	if err != nil {
		os.Exit(1)
	}
	defer db.Close()

	manager, sims := setupSimulatedSources(conf.MConfig, appLogger)

	session := models.MSessionInfo{
		ID:            uuid.NewString(),
		SourceName:    "smoke-test",
		SampleRate:    conf.Source.SampleRate,
		ChannelLabels: sims[0].ChannelLabels(),
		StartedAt:     time.Now().UTC(),
	}
	if err := db.SaveSession(session); err != nil {
		appLogger.Warning("Failed to persist session: %v", err)
	}

	// 5. Pipeline and server
	var srv *server.DashboardServer
	pipeline := analysis.NewPipeline(conf.MConfig,
		func(result *models.MStatisticResult) {
			reportStatistic(result, conf, appLogger)
			srv.Broadcast(srv.StatisticUpdate(result))
		},
		nil)

	srv = server.NewDashboardServer(conf.MConfig, appLogger, pipeline, db, session)
	srv.OnTrigger = pipeline.OnTrigger

	startServers(srv, appLogger)

	// 6. Run the scripted session
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	blocksChan := make(chan models.MSignalBlock, 500)

	pipeline.Start(ctx, blocksChan, &wg)
	if err := manager.Start(ctx, blocksChan, &wg); err != nil {
		appLogger.Critical("Failed to start sources: %v", err)
	}

	go runScriptedSession(pipeline, sims, *triggers, conf.MConfig, appLogger)

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down smoke harness...")
	manager.Stop()
	cancel()
	wg.Wait()
}
