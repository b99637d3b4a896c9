package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/queue"
	"clipforge/internal/stage"
)

// pipelineStage binds a stable status to the handler that advances it.
type pipelineStage struct {
	name             string
	handler          stage.Handler
	triggerStatus    queue.Status
	processingStatus queue.Status
	doneStatus       queue.Status
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	logger       *slog.Logger
	notifier     notifications.Service
	pollInterval time.Duration

	stages      []pipelineStage
	statusOrder []queue.Status

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager with the default notifier.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		notifier:     notifier,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
	}
}

// ConfigureStages registers the analyze and render handlers. It must be
// called before Start.
func (m *Manager) ConfigureStages(analyze, render stage.Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = []pipelineStage{
		{
			name:             "analyzing",
			handler:          analyze,
			triggerStatus:    queue.StatusPending,
			processingStatus: queue.StatusAnalyzing,
			doneStatus:       queue.StatusAnalyzed,
		},
		{
			name:             "rendering",
			handler:          render,
			triggerStatus:    queue.StatusAnalyzed,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusCompleted,
		},
	}
	m.statusOrder = []queue.Status{queue.StatusPending, queue.StatusAnalyzed}
}

func (m *Manager) stageForStatus(status queue.Status) (pipelineStage, bool) {
	for _, st := range m.stages {
		if st.triggerStatus == status {
			return st, true
		}
	}
	return pipelineStage{}, false
}

// LastError returns the most recent processing error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// StageHealth reports readiness for every registered stage.
func (m *Manager) StageHealth(ctx context.Context) []stage.Health {
	m.mu.RLock()
	stages := m.stages
	m.mu.RUnlock()

	checks := make([]stage.Health, 0, len(stages))
	for _, st := range stages {
		if st.handler == nil {
			checks = append(checks, stage.Unhealthy(st.name, "handler not configured"))
			continue
		}
		checks = append(checks, st.handler.HealthCheck(ctx))
	}
	return checks
}
