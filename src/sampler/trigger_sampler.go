package sampler

import (
	"errors"
	"sync"
	"sync/atomic"

	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
	"ssvep-observer/src/utils"
)

// -----------------------------------------------------------------------------
// TriggerSampler aligns the preprocessed stream with stimulus triggers. It
// keeps a rolling ring of recent samples; when a trigger arrives, the onset
// is pinned to the current write head and the requested span around it is
// extracted once the stream has caught up. Triggers whose span has already
// been evicted, or whose period is malformed, are dropped with a warning.
// -----------------------------------------------------------------------------

type pendingTrigger struct {
	onset int64 // absolute sample index of stimulus onset
	event models.MTriggerEvent
}

type TriggerSampler struct {
	ring            *utils.SignalRing
	sampleRate      float64
	integrationTime float64
	emit            func(models.MTimedRecording)
	logger          *logger.Logger

	mu      sync.Mutex
	pending []pendingTrigger

	triggersReceived  atomic.Int64
	recordingsSampled atomic.Int64
	triggersDropped   atomic.Int64
}

// -----------------------------------------------------------------------------

// NewTriggerSampler builds a sampler over a ring of bufferSeconds at the
// given (post-decimation) sample rate. emit receives every extracted
// recording.
func NewTriggerSampler(sampleRate, bufferSeconds, integrationTime float64, channels int, emit func(models.MTimedRecording)) *TriggerSampler {
	capacity := utils.CalculateBufferCapacity(sampleRate, bufferSeconds)
	return &TriggerSampler{
		ring:            utils.NewSignalRing(capacity, channels),
		sampleRate:      sampleRate,
		integrationTime: integrationTime,
		emit:            emit,
		logger:          logger.NewLogger("", "TriggerSampler"),
	}
}

// -----------------------------------------------------------------------------

// OnBlock feeds one preprocessed block into the ring and extracts every
// pending trigger whose span is now fully buffered.
func (ts *TriggerSampler) OnBlock(block models.MSignalBlock) {
	ts.ring.Write(block)
	ts.drainPending(block.SourceName)
}

// -----------------------------------------------------------------------------

// OnTrigger registers a stimulus trigger. The onset is the stream position
// at the moment of arrival. Events without a period produce a recording of
// the most recent integration window with no trigger interval attached.
func (ts *TriggerSampler) OnTrigger(event models.MTriggerEvent) {
	ts.triggersReceived.Add(1)

	if event.Period == nil {
		ts.sampleUntriggered(event)
		return
	}

	if event.Period.Stop <= event.Period.Start {
		ts.triggersDropped.Add(1)
		ts.logger.Warning("Dropping trigger '%s': malformed period [%g, %g]",
			event.Value, event.Period.Start, event.Period.Stop)
		return
	}

	ts.mu.Lock()
	ts.pending = append(ts.pending, pendingTrigger{
		onset: ts.ring.Head(),
		event: event,
	})
	ts.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (ts *TriggerSampler) drainPending(sourceName string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	remaining := ts.pending[:0]
	for _, pt := range ts.pending {
		start := pt.onset + int64(pt.event.Period.Start*ts.sampleRate)
		end := pt.onset + int64(pt.event.Period.Stop*ts.sampleRate)

		data, err := ts.ring.Extract(start, end)
		switch {
		case errors.Is(err, utils.ErrRangeNotReady):
			remaining = append(remaining, pt)
			continue
		case errors.Is(err, utils.ErrRangeEvicted):
			ts.triggersDropped.Add(1)
			ts.logger.Warning("Dropping trigger '%s': requested span was evicted before extraction", pt.event.Value)
			continue
		case err != nil:
			ts.triggersDropped.Add(1)
			ts.logger.Warning("Dropping trigger '%s': %v", pt.event.Value, err)
			continue
		}

		ts.recordingsSampled.Add(1)
		ts.emit(models.MTimedRecording{
			Data: data,
			TimeAxis: models.MAxis{
				Name:   "time",
				Gain:   1.0 / ts.sampleRate,
				Offset: pt.event.Period.Start,
			},
			Trigger: &models.MTriggerInterval{
				Start: pt.event.Period.Start,
				End:   pt.event.Period.Stop,
			},
			Value:      pt.event.Value,
			SourceName: sourceName,
		})
	}
	ts.pending = remaining
}

// -----------------------------------------------------------------------------

func (ts *TriggerSampler) sampleUntriggered(event models.MTriggerEvent) {
	n := int(ts.integrationTime * ts.sampleRate)
	data, _ := ts.ring.Latest(n)

	ts.recordingsSampled.Add(1)
	ts.emit(models.MTimedRecording{
		Data: data,
		TimeAxis: models.MAxis{
			Name:   "time",
			Gain:   1.0 / ts.sampleRate,
			Offset: -ts.integrationTime,
		},
		Value: event.Value,
	})
}

// -----------------------------------------------------------------------------

// PendingCount returns the number of triggers waiting for the stream to
// catch up.
func (ts *TriggerSampler) PendingCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.pending)
}

// -----------------------------------------------------------------------------

// Counters returns lifetime trigger and recording counts.
func (ts *TriggerSampler) Counters() (received, sampled, dropped int64) {
	return ts.triggersReceived.Load(), ts.recordingsSampled.Load(), ts.triggersDropped.Load()
}

// -----------------------------------------------------------------------------

// Reset discards buffered signal and pending triggers.
func (ts *TriggerSampler) Reset() {
	ts.mu.Lock()
	ts.pending = nil
	ts.mu.Unlock()
	ts.ring.Reset()
}
