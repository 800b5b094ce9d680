package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ssvep-observer/src/helpers"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Use the executable name for the schema so multiple deployments can
	// share one cluster
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	// The database may still be coming up when the observer starts
	if _, err := helpers.RetryWithBackoff("database ping", 5, time.Second, func() (interface{}, error) {
		return nil, db.Ping()
	}); err != nil {
		return &helpers.StorageError{ObserverError: helpers.ObserverError{Message: "failed to reach postgres", Cause: err}}
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table(name string) string {
	return fmt.Sprintf(`"%s".%s`, d.Schema, name)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			source_name TEXT,
			sample_rate DOUBLE PRECISION,
			channel_labels TEXT,
			started_at BIGINT
		);`, d.table("sessions")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT,
			value TEXT,
			period_start DOUBLE PRECISION,
			period_stop DOUBLE PRECISION,
			received_at BIGINT
		);`, d.table("trigger_events")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT,
			computed_at BIGINT,
			pairs INTEGER,
			correction DOUBLE PRECISION,
			peak_statistic DOUBLE PRECISION,
			peak_freq_hz DOUBLE PRECISION,
			peak_channel INTEGER,
			bins_over INTEGER,
			threshold DOUBLE PRECISION,
			payload TEXT
		);`, d.table("statistics")),
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
