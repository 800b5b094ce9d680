package datasource

import (
	"context"
	"fmt"
	"sync"

	"ssvep-observer/src/interfaces"
	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"
)

// -----------------------------------------------------------------------------
// SourceManager aggregates multiple ISignalSource instances and multiplexes
// their blocks onto one output channel.
// -----------------------------------------------------------------------------

type SourceManager struct {
	Sources    map[string]interfaces.ISignalSource
	Logger     *logger.Logger
	mu         sync.RWMutex
	outputChan chan<- models.MSignalBlock // Send-only, managed by parent
	ctx        context.Context            // Lifecycle context (derived)
	cancelFunc context.CancelFunc         // To stop all sources
	wg         *sync.WaitGroup            // Shared WaitGroup (ptr)
}

// -----------------------------------------------------------------------------

func NewSourceManager(sources []interfaces.ISignalSource, log *logger.Logger) *SourceManager {
	m := &SourceManager{
		Sources: make(map[string]interfaces.ISignalSource),
		Logger:  log,
	}

	for _, s := range sources {
		m.Sources[s.Name()] = s
	}

	return m
}

// -----------------------------------------------------------------------------

// AddSource adds a new source and starts it if the manager is running
func (m *SourceManager) AddSource(source interfaces.ISignalSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := source.Name()
	if _, exists := m.Sources[name]; exists {
		return fmt.Errorf("source %s already exists", name)
	}

	m.Sources[name] = source
	m.Logger.Info("Added source: %s", name)

	if m.outputChan != nil && m.ctx != nil {
		if err := source.Start(m.ctx, m.outputChan, m.wg); err != nil {
			return fmt.Errorf("failed to start source %s: %v", name, err)
		}
		m.Logger.Info("Started source: %s", name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource stops and removes a source
func (m *SourceManager) RemoveSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, exists := m.Sources[name]
	if !exists {
		return fmt.Errorf("source %s not found", name)
	}

	if err := source.Stop(); err != nil {
		m.Logger.Error("Error stopping source %s: %v", name, err)
	}

	delete(m.Sources, name)
	m.Logger.Info("Removed source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// GetSource retrieves a source by name
func (m *SourceManager) GetSource(name string) (interfaces.ISignalSource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, exists := m.Sources[name]
	if !exists {
		return nil, fmt.Errorf("source %s not found", name)
	}
	return source, nil
}

// -----------------------------------------------------------------------------

// GetAllSources returns a list of all sources
func (m *SourceManager) GetAllSources() []interfaces.ISignalSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]interfaces.ISignalSource, 0, len(m.Sources))
	for _, s := range m.Sources {
		list = append(list, s)
	}
	return list
}

// -----------------------------------------------------------------------------

// StartSource starts one source by name using the manager's lifecycle.
func (m *SourceManager) StartSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, exists := m.Sources[name]
	if !exists {
		return fmt.Errorf("source %s not found", name)
	}
	if m.ctx == nil {
		return fmt.Errorf("SourceManager is not running")
	}
	return source.Start(m.ctx, m.outputChan, m.wg)
}

// -----------------------------------------------------------------------------

// StopSource stops one source by name, keeping it registered.
func (m *SourceManager) StopSource(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	source, exists := m.Sources[name]
	if !exists {
		return fmt.Errorf("source %s not found", name)
	}
	return source.Stop()
}

// -----------------------------------------------------------------------------

// Start starts all sources on a derived context so the manager can be
// stopped independently of the parent.
func (m *SourceManager) Start(parentCtx context.Context, outputChan chan<- models.MSignalBlock, wg *sync.WaitGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return fmt.Errorf("SourceManager is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	m.ctx = ctx
	m.cancelFunc = cancel
	m.outputChan = outputChan
	m.wg = wg

	for name, source := range m.Sources {
		if err := source.Start(ctx, outputChan, wg); err != nil {
			m.Logger.Error("Failed to start source %s: %v", name, err)
			continue
		}
		m.Logger.Info("Started source: %s", name)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Stop stops all sources and releases the lifecycle context.
func (m *SourceManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	for name, source := range m.Sources {
		if err := source.Stop(); err != nil {
			m.Logger.Error("Error stopping source %s: %v", name, err)
		}
	}

	m.ctx = nil
	m.cancelFunc = nil
	m.outputChan = nil
	m.wg = nil
}
