package server

import (
	"time"

	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// Helper Methods
// -----------------------------------------------------------------------------

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// -----------------------------------------------------------------------------

// StatisticUpdate packages a recomputed result with its summary for
// broadcast.
func (s *DashboardServer) StatisticUpdate(result *models.MStatisticResult) *models.MDashboardUpdate {
	update := &models.MDashboardUpdate{
		Type:      models.UpdateStats,
		Statistic: result,
		Timestamp: nowMillis(),
	}
	if result != nil && !result.Empty {
		summary := result.Summarize(s.Config.Processing.SignifThreshold)
		update.Summary = &summary
	}
	return update
}

// -----------------------------------------------------------------------------

// PreviewUpdate packages a preprocessed block as a bounded signal preview.
// Only the tail of the block is kept when it exceeds the preview cap.
func PreviewUpdate(block models.MSignalBlock, maxSamples int) *models.MDashboardUpdate {
	samples := block.Samples
	start := block.StartIndex
	if len(samples) > maxSamples {
		cut := len(samples) - maxSamples
		samples = samples[cut:]
		start += int64(cut)
	}

	return &models.MDashboardUpdate{
		Type: models.UpdatePreview,
		Preview: &models.MSignalPreview{
			Samples:    samples,
			SampleRate: block.SampleRate,
			StartIndex: start,
		},
		Timestamp: nowMillis(),
	}
}

// -----------------------------------------------------------------------------

// MetricsUpdate packages a metrics snapshot for broadcast.
func MetricsUpdate(metrics models.MObserverMetrics) *models.MDashboardUpdate {
	return &models.MDashboardUpdate{
		Type:      models.UpdateMetrics,
		Metrics:   &metrics,
		Timestamp: nowMillis(),
	}
}
