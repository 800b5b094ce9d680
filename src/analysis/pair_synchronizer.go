package analysis

import (
	"context"
	"sync"
	"sync/atomic"

	"ssvep-observer/src/models"
	"ssvep-observer/src/utils"
)

// -----------------------------------------------------------------------------
// PairSynchronizer joins the baseline and stimulus spectral streams back into
// pairs. Pairing is positional: the i-th baseline frame is matched with the
// i-th stimulus frame, which holds because the splitter emits both windows of
// a recording or neither. The pairing goroutine blocks on whichever stream
// is behind, so a burst on one side just queues until its partner arrives.
// -----------------------------------------------------------------------------

type SpectralPair struct {
	Baseline models.MSpectralFrame
	Stimulus models.MSpectralFrame
}

// -----------------------------------------------------------------------------
// PairedHistory is the accumulated set of spectral pairs of the current
// session. It only grows until Clear; the statistics sharpen as pairs
// accumulate.
// -----------------------------------------------------------------------------

type PairedHistory struct {
	mu        sync.RWMutex
	baselines []models.MSpectralFrame
	stimuli   []models.MSpectralFrame
}

func NewPairedHistory() *PairedHistory {
	return &PairedHistory{}
}

// Append adds one pair atomically.
func (ph *PairedHistory) Append(pair SpectralPair) {
	ph.mu.Lock()
	defer ph.mu.Unlock()
	ph.baselines = append(ph.baselines, pair.Baseline)
	ph.stimuli = append(ph.stimuli, pair.Stimulus)
}

// Snapshot returns both frame lists as copies safe to read concurrently
// with further appends.
func (ph *PairedHistory) Snapshot() (baselines, stimuli []models.MSpectralFrame) {
	ph.mu.RLock()
	defer ph.mu.RUnlock()
	baselines = make([]models.MSpectralFrame, len(ph.baselines))
	stimuli = make([]models.MSpectralFrame, len(ph.stimuli))
	copy(baselines, ph.baselines)
	copy(stimuli, ph.stimuli)
	return baselines, stimuli
}

// Len returns the number of complete pairs.
func (ph *PairedHistory) Len() int {
	ph.mu.RLock()
	defer ph.mu.RUnlock()
	return len(ph.baselines)
}

// Clear discards everything.
func (ph *PairedHistory) Clear() {
	ph.mu.Lock()
	defer ph.mu.Unlock()
	ph.baselines = nil
	ph.stimuli = nil
}

// -----------------------------------------------------------------------------

type PairSynchronizer struct {
	baselineQueue *utils.FIFO[models.MSpectralFrame]
	stimulusQueue *utils.FIFO[models.MSpectralFrame]
	history       *PairedHistory
	onPair        func()

	// mu orders pushes, resets and appends against each other, so a reset
	// never lands between the two frames of one recording.
	mu            sync.Mutex
	generation    int64
	pairsAppended atomic.Int64
}

// -----------------------------------------------------------------------------

// NewPairSynchronizer builds a synchronizer writing into history. onPair is
// invoked after every appended pair; it must not block.
func NewPairSynchronizer(history *PairedHistory, onPair func()) *PairSynchronizer {
	return &PairSynchronizer{
		baselineQueue: utils.NewFIFO[models.MSpectralFrame](),
		stimulusQueue: utils.NewFIFO[models.MSpectralFrame](),
		history:       history,
		onPair:        onPair,
	}
}

// -----------------------------------------------------------------------------

// PushPair enqueues both frames of one recording atomically with respect to
// Reset, keeping the two queues positionally aligned. Never blocks.
func (ps *PairSynchronizer) PushPair(baseline, stimulus models.MSpectralFrame) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.baselineQueue.Push(baseline)
	ps.stimulusQueue.Push(stimulus)
}

// PushBaseline enqueues a baseline frame without blocking.
func (ps *PairSynchronizer) PushBaseline(frame models.MSpectralFrame) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.baselineQueue.Push(frame)
}

// PushStimulus enqueues a stimulus frame without blocking.
func (ps *PairSynchronizer) PushStimulus(frame models.MSpectralFrame) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.stimulusQueue.Push(frame)
}

// -----------------------------------------------------------------------------

// Start runs the pairing goroutine until the context is cancelled.
func (ps *PairSynchronizer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			// The generation at pop time detects a reset that raced the
			// pairing: a baseline popped before the reset must not pair
			// with a stimulus pushed after it.
			ps.mu.Lock()
			gen := ps.generation
			ps.mu.Unlock()

			baseline, ok := ps.baselineQueue.Pop(ctx)
			if !ok {
				return
			}
			stimulus, ok := ps.stimulusQueue.Pop(ctx)
			if !ok {
				return
			}

			ps.mu.Lock()
			if ps.generation != gen {
				// Frames popped across a reset belong to mixed sessions.
				// Drop them and whatever residue is still queued;
				// alignment restarts with the next pushed pair.
				ps.baselineQueue.Clear()
				ps.stimulusQueue.Clear()
				ps.mu.Unlock()
				continue
			}

			ps.history.Append(SpectralPair{Baseline: baseline, Stimulus: stimulus})
			ps.mu.Unlock()

			ps.pairsAppended.Add(1)
			if ps.onPair != nil {
				ps.onPair()
			}
		}
	}()
}

// -----------------------------------------------------------------------------

// PairsAppended returns the lifetime pair count.
func (ps *PairSynchronizer) PairsAppended() int64 {
	return ps.pairsAppended.Load()
}

// -----------------------------------------------------------------------------

// Reset drops queued frames and the paired history together, so positional
// pairing restarts from a clean slate. Bumping the generation invalidates
// any frame the pairing goroutine popped before the reset.
func (ps *PairSynchronizer) Reset() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.generation++
	ps.baselineQueue.Clear()
	ps.stimulusQueue.Clear()
	ps.history.Clear()
}
