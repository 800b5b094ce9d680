package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// Row scanning shared by the sqlite and postgres backends. Both store
// channel labels as a JSON array and times as unix seconds.
// -----------------------------------------------------------------------------

func scanSessions(rows *sql.Rows) ([]models.MSessionInfo, error) {
	var sessions []models.MSessionInfo
	for rows.Next() {
		var s models.MSessionInfo
		var labels string
		var startedAt int64
		if err := rows.Scan(&s.ID, &s.SourceName, &s.SampleRate, &labels, &startedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(labels), &s.ChannelLabels); err != nil {
			s.ChannelLabels = nil
		}
		s.StartedAt = time.Unix(startedAt, 0).UTC()
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// -----------------------------------------------------------------------------

func scanSummaries(rows *sql.Rows) ([]models.MStatisticSummary, error) {
	var summaries []models.MStatisticSummary
	for rows.Next() {
		var s models.MStatisticSummary
		var computedAt int64
		if err := rows.Scan(&computedAt, &s.Pairs, &s.PeakStatistic, &s.PeakFreqHz, &s.PeakChannel, &s.BinsOver, &s.Threshold); err != nil {
			return nil, err
		}
		s.ComputedAt = time.Unix(computedAt, 0).UTC()
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
