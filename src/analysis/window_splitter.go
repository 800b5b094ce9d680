package analysis

import (
	"sync/atomic"

	"ssvep-observer/src/analysis/core"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// WindowSplitter cuts each trigger-aligned recording into a baseline window
// ending at stimulus onset and a stimulus window starting there, both exactly
// one integration time long. A recording yields both windows or neither:
// uneven group sizes would bias the rank-sum statistic downstream.
// -----------------------------------------------------------------------------

type WindowSplitter struct {
	integrationTime float64
	logger          *logger.Logger

	droppedNoTrigger   atomic.Int64
	droppedShortWindow atomic.Int64
	splitCount         atomic.Int64
}

// -----------------------------------------------------------------------------

func NewWindowSplitter(integrationTime float64) *WindowSplitter {
	return &WindowSplitter{
		integrationTime: integrationTime,
		logger:          logger.NewLogger("", "WindowSplitter"),
	}
}

// -----------------------------------------------------------------------------

// Split returns the baseline and stimulus windows of the recording. ok is
// false when the recording carries no trigger interval or is too short to
// hold both windows around the onset; such recordings are discarded as a
// routine event, not an error.
func (ws *WindowSplitter) Split(rec models.MTimedRecording) (baseline, stimulus models.MSubWindow, ok bool) {
	if rec.Trigger == nil {
		ws.droppedNoTrigger.Add(1)
		ws.logger.Info("Discarding recording '%s': no trigger period attached", rec.Value)
		return models.MSubWindow{}, models.MSubWindow{}, false
	}

	numSamples := len(rec.Data)
	gain := rec.TimeAxis.Gain
	if numSamples == 0 || gain <= 0 {
		ws.droppedShortWindow.Add(1)
		ws.logger.Warning("Discarding recording '%s': empty or invalid time axis", rec.Value)
		return models.MSubWindow{}, models.MSubWindow{}, false
	}

	n := int(ws.integrationTime / gain)
	t0 := core.NearestIndex(rec.TimeAxis, numSamples)

	if t0 < n || t0+n > numSamples {
		ws.droppedShortWindow.Add(1)
		ws.logger.Warning("Discarding recording '%s': %d samples cannot hold two %d-sample windows around onset %d",
			rec.Value, numSamples, n, t0)
		return models.MSubWindow{}, models.MSubWindow{}, false
	}

	baseline = models.MSubWindow{
		Data: rec.Data[t0-n : t0],
		TimeAxis: models.MAxis{
			Name:   rec.TimeAxis.Name,
			Gain:   gain,
			Offset: rec.TimeAxis.Value(t0 - n),
		},
		Tag: models.TagBaseline,
	}
	stimulus = models.MSubWindow{
		Data: rec.Data[t0 : t0+n],
		TimeAxis: models.MAxis{
			Name:   rec.TimeAxis.Name,
			Gain:   gain,
			Offset: rec.TimeAxis.Value(t0),
		},
		Tag: models.TagStimulus,
	}

	ws.splitCount.Add(1)
	return baseline, stimulus, true
}

// -----------------------------------------------------------------------------

// Counters returns lifetime split and drop counts.
func (ws *WindowSplitter) Counters() (split, droppedNoTrigger, droppedShort int64) {
	return ws.splitCount.Load(), ws.droppedNoTrigger.Load(), ws.droppedShortWindow.Load()
}
