package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source_name TEXT,
			sample_rate REAL,
			channel_labels TEXT,
			started_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS trigger_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			value TEXT,
			period_start REAL,
			period_stop REAL,
			received_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS statistics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			computed_at INTEGER,
			pairs INTEGER,
			correction REAL,
			peak_statistic REAL,
			peak_freq_hz REAL,
			peak_channel INTEGER,
			bins_over INTEGER,
			threshold REAL,
			payload TEXT
		);`,
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveSession(session models.MSessionInfo) error {
	labels, err := json.Marshal(session.ChannelLabels)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO sessions (id, source_name, sample_rate, channel_labels, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, session.ID, session.SourceName, session.SampleRate, string(labels), session.StartedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveTriggerEvent(sessionID string, event models.MTriggerEvent) error {
	var start, stop sql.NullFloat64
	if event.Period != nil {
		start = sql.NullFloat64{Float64: event.Period.Start, Valid: true}
		stop = sql.NullFloat64{Float64: event.Period.Stop, Valid: true}
	}

	_, err := d.DB.Exec(`
		INSERT INTO trigger_events (session_id, value, period_start, period_stop, received_at)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, event.Value, start, stop, event.ReceivedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveStatistic(sessionID string, result models.MStatisticResult, summary models.MStatisticSummary) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO statistics (session_id, computed_at, pairs, correction,
			peak_statistic, peak_freq_hz, peak_channel, bins_over, threshold, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, result.ComputedAt.Unix(), result.Pairs, result.Correction,
		summary.PeakStatistic, summary.PeakFreqHz, summary.PeakChannel,
		summary.BinsOver, summary.Threshold, string(payload))
	return err
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) RecentSessions(limit int) ([]models.MSessionInfo, error) {
	rows, err := d.DB.Query(`
		SELECT id, source_name, sample_rate, channel_labels, started_at
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) RecentStatistics(sessionID string, limit int) ([]models.MStatisticSummary, error) {
	rows, err := d.DB.Query(`
		SELECT computed_at, pairs, peak_statistic, peak_freq_hz, peak_channel, bins_over, threshold
		FROM statistics WHERE session_id = ? ORDER BY computed_at DESC LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec("DELETE FROM trigger_events WHERE received_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup trigger_events error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM statistics WHERE computed_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup statistics error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM sessions WHERE started_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup sessions error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
