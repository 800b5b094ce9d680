package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// Session and statistic persistence for the postgres backend.
// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveSession(session models.MSessionInfo) error {
	labels, err := json.Marshal(session.ChannelLabels)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, source_name, sample_rate, channel_labels, started_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, d.table("sessions"))

	_, err = d.DB.Exec(query, session.ID, session.SourceName, session.SampleRate, string(labels), session.StartedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTriggerEvent(sessionID string, event models.MTriggerEvent) error {
	var start, stop sql.NullFloat64
	if event.Period != nil {
		start = sql.NullFloat64{Float64: event.Period.Start, Valid: true}
		stop = sql.NullFloat64{Float64: event.Period.Stop, Valid: true}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, value, period_start, period_stop, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.table("trigger_events"))

	_, err := d.DB.Exec(query, sessionID, event.Value, start, stop, event.ReceivedAt.Unix())
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveStatistic(sessionID string, result models.MStatisticResult, summary models.MStatisticSummary) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, computed_at, pairs, correction,
			peak_statistic, peak_freq_hz, peak_channel, bins_over, threshold, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, d.table("statistics"))

	_, err = d.DB.Exec(query, sessionID, result.ComputedAt.Unix(), result.Pairs, result.Correction,
		summary.PeakStatistic, summary.PeakFreqHz, summary.PeakChannel,
		summary.BinsOver, summary.Threshold, string(payload))
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecentSessions(limit int) ([]models.MSessionInfo, error) {
	query := fmt.Sprintf(`
		SELECT id, source_name, sample_rate, channel_labels, started_at
		FROM %s ORDER BY started_at DESC LIMIT $1
	`, d.table("sessions"))

	rows, err := d.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecentStatistics(sessionID string, limit int) ([]models.MStatisticSummary, error) {
	query := fmt.Sprintf(`
		SELECT computed_at, pairs, peak_statistic, peak_freq_hz, peak_channel, bins_over, threshold
		FROM %s WHERE session_id = $1 ORDER BY computed_at DESC LIMIT $2
	`, d.table("statistics"))

	rows, err := d.DB.Query(query, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)...", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE received_at < $1", d.table("trigger_events")), cutoff); err != nil {
		d.Logger.Error("Cleanup trigger_events error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE computed_at < $1", d.table("statistics")), cutoff); err != nil {
		d.Logger.Error("Cleanup statistics error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf("DELETE FROM %s WHERE started_at < $1", d.table("sessions")), cutoff); err != nil {
		d.Logger.Error("Cleanup sessions error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}
