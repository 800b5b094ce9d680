package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"ssvep-observer/src/logger"
)

// -----------------------------------------------------------------------------
// MemoryManager watches process memory against a configured ceiling. The
// paired spectral history must survive a session intact, so pressure is
// relieved by trimming disposable buffers (dashboard previews) and forcing GC,
// never by dropping analysis data.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	MaxMemoryMB int
	Logger      *logger.Logger
	onPressure  []func()
	mu          sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB int) *MemoryManager {
	return &MemoryManager{
		MaxMemoryMB: maxMemoryMB,
		Logger:      logger.NewLogger("", "MemoryManager"),
	}
}

// -----------------------------------------------------------------------------

// OnPressure registers a callback invoked when the memory ceiling is hit.
// Callbacks trim disposable state only.
func (mm *MemoryManager) OnPressure(fn func()) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.onPressure = append(mm.onPressure, fn)
}

// -----------------------------------------------------------------------------

// CheckMemoryLimits samples heap usage and reacts when over the ceiling.
// Returns true when pressure handling ran.
func (mm *MemoryManager) CheckMemoryLimits() bool {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int(m.Alloc / 1024 / 1024)
	if mm.MaxMemoryMB <= 0 || currentMB <= mm.MaxMemoryMB {
		return false
	}

	mm.Logger.Warning("Memory usage %dMB exceeds limit %dMB, trimming disposable buffers", currentMB, mm.MaxMemoryMB)

	mm.mu.RLock()
	callbacks := make([]func(), len(mm.onPressure))
	copy(callbacks, mm.onPressure)
	mm.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}

	debug.FreeOSMemory()
	return true
}

// -----------------------------------------------------------------------------

// CurrentUsageMB returns the current heap allocation in megabytes.
func (mm *MemoryManager) CurrentUsageMB() int {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int(m.Alloc / 1024 / 1024)
}
