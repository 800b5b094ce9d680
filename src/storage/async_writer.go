package storage

import (
	"fmt"
	"sync"

	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// Pending writes beyond this are dropped with a warning rather than
// blocking the analysis loop.
const writeQueueSize = 256

// -----------------------------------------------------------------------------
// AsyncWriter decorates a database with a buffered write queue and a single
// writer goroutine, so trigger and statistic persistence never stalls the
// recompute path. Reads and session setup stay synchronous; only the
// high-rate appends go through the queue.
// -----------------------------------------------------------------------------

type AsyncWriter struct {
	db     interfaces.IDatabase
	Logger *logger.Logger

	jobs chan writeJob
	done chan struct{}

	closeOnce sync.Once
}

type writeJob struct {
	kind string
	run  func() error
}

// -----------------------------------------------------------------------------

// NewAsyncWriter wraps db and starts the writer goroutine.
func NewAsyncWriter(db interfaces.IDatabase, log *logger.Logger) *AsyncWriter {
	w := &AsyncWriter{
		db:     db,
		Logger: log,
		jobs:   make(chan writeJob, writeQueueSize),
		done:   make(chan struct{}),
	}

	go w.writeLoop()
	return w
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) writeLoop() {
	defer close(w.done)

	for job := range w.jobs {
		if err := job.run(); err != nil {
			w.Logger.Error("Async %s write failed: %v", job.kind, err)
		}
	}
}

// -----------------------------------------------------------------------------

// enqueue never blocks; when the queue is full the write is dropped with a
// warning, not allowed to back-pressure the caller.
func (w *AsyncWriter) enqueue(kind string, run func() error) {
	select {
	case w.jobs <- writeJob{kind: kind, run: run}:
	default:
		w.Logger.Warning("Write queue full, dropping %s write", kind)
	}
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) Initialize() error {
	return w.db.Initialize()
}

// -----------------------------------------------------------------------------

// SaveSession stays synchronous: it runs once at startup and its caller
// wants the error.
func (w *AsyncWriter) SaveSession(session models.MSessionInfo) error {
	return w.db.SaveSession(session)
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) SaveTriggerEvent(sessionID string, event models.MTriggerEvent) error {
	w.enqueue("trigger", func() error {
		return w.db.SaveTriggerEvent(sessionID, event)
	})
	return nil
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) SaveStatistic(sessionID string, result models.MStatisticResult, summary models.MStatisticSummary) error {
	w.enqueue("statistic", func() error {
		return w.db.SaveStatistic(sessionID, result, summary)
	})
	return nil
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) RecentSessions(limit int) ([]models.MSessionInfo, error) {
	return w.db.RecentSessions(limit)
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) RecentStatistics(sessionID string, limit int) ([]models.MStatisticSummary, error) {
	return w.db.RecentStatistics(sessionID, limit)
}

// -----------------------------------------------------------------------------

func (w *AsyncWriter) CleanupOldData() error {
	return w.db.CleanupOldData()
}

// -----------------------------------------------------------------------------

// Close drains every queued write, then closes the underlying database.
func (w *AsyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.jobs)
	})
	<-w.done

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close underlying database: %w", err)
	}
	return nil
}
