package main

import (
	"ssvep-observer/src/data_source"
	"ssvep-observer/src/data_source/simulator"
	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase initializes the database connection based on config
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	var db interfaces.IDatabase
	var err error

	switch config.Storage.DBType {
	case "postgres":
		pgLogger := logger.NewLogger(config.LogLevel, "PostgresDB")
		db, err = storage.NewPostgresDB(config, pgLogger)
	default:
		// Default to SQLite
		sqliteLogger := logger.NewLogger(config.LogLevel, "SQLiteDB")
		db, err = storage.NewSQLiteDB(config, sqliteLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		return nil, err
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
		return nil, err
	}
	return storage.NewAsyncWriter(db, appLogger), nil
}

// -----------------------------------------------------------------------------

// setupSimulatedSources builds one simulator per configured source entry,
// ignoring gateway entries so the harness never needs a live upstream.
func setupSimulatedSources(config *models.MConfig, appLogger *logger.Logger) (*datasource.SourceManager, []*simulator.SimulatorSource) {
	var sources []interfaces.ISignalSource
	var sims []*simulator.SimulatorSource

	for _, srcCfg := range config.Source.Sources {
		if srcCfg.Kind == "gateway" {
			appLogger.Info("Skipping gateway source %s in smoke harness", srcCfg.Name)
			continue
		}
		sim := simulator.NewSimulatorSource(config, srcCfg)
		sims = append(sims, sim)
		sources = append(sources, sim)
	}

	if len(sims) == 0 {
		// Always have at least one stream to exercise
		sim := simulator.NewSimulatorSource(config, models.MSourceConfig{Name: "smoke-sim", Kind: "simulator", Seed: 7})
		sims = append(sims, sim)
		sources = append(sources, sim)
	}

	return datasource.NewSourceManager(sources, appLogger), sims
}
