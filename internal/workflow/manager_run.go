package workflow

import (
	"context"
	"errors"
	"time"

	"clipforge/internal/logging"
	"clipforge/internal/queue"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	if count, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("reset stuck processing failed", logging.Error(err))
	} else if count > 0 {
		m.logger.Info("reset stuck items", logging.Int64("count", count))
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.nextItem(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item", logging.Error(err))
			m.waitForItemOrShutdown(ctx)
			continue
		}
		if item == nil {
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) nextItem(ctx context.Context) (*queue.Item, error) {
	m.mu.RLock()
	statuses := m.statusOrder
	m.mu.RUnlock()
	return m.store.NextForStatuses(ctx, statuses...)
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}
