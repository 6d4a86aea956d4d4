package collector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YSC-hain/Message-Aggregator/internal/telegram"
)

// Runner executes one full collection pass.
type Runner interface {
	Run(ctx context.Context) error
	GetTelegramStatus() telegram.Status
}

// RunJob represents an active collection run.
type RunJob struct {
	ID        uuid.UUID
	StartedAt time.Time
}

// RunManager serializes collection runs: only one may be active at a time,
// whether triggered by the scheduler or over HTTP.
// thread-safe
type RunManager struct {
	mu       sync.Mutex
	current  *RunJob
	cancelFn context.CancelFunc
	runner   Runner
}

// NewRunManager creates a new run manager.
func NewRunManager(runner Runner) *RunManager {
	return &RunManager{
		runner: runner,
	}
}

// Start launches a new collection run in the background.
// returns ErrAlreadyRunning if one is in progress
func (m *RunManager) Start(_ context.Context) (*RunJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return nil, ErrAlreadyRunning
	}

	// IMPORTANT: Use background context, NOT the HTTP request context!
	// The HTTP request context gets canceled when the handler returns,
	// which would immediately cancel the run.
	runCtx, cancel := context.WithCancel(context.Background())
	m.cancelFn = cancel

	job := &RunJob{
		ID:        uuid.New(),
		StartedAt: time.Now(),
	}
	m.current = job

	go m.run(runCtx, job)

	return job, nil
}

// Stop cancels the current run.
// safe to call when nothing is running
func (m *RunManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelFn != nil {
		m.cancelFn()
		m.cancelFn = nil
	}
	m.current = nil
}

// Current returns the active run, or nil when idle.
func (m *RunManager) Current() *RunJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// GetTelegramStatus reports the source client status for the status endpoint.
func (m *RunManager) GetTelegramStatus() telegram.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runner == nil {
		return "UNKNOWN"
	}
	return m.runner.GetTelegramStatus()
}

func (m *RunManager) run(ctx context.Context, job *RunJob) {
	defer func() {
		m.mu.Lock()
		if m.current != nil && m.current.ID == job.ID {
			m.current = nil
			m.cancelFn = nil
		}
		m.mu.Unlock()
	}()

	if m.runner != nil {
		// errors are logged inside the runner
		_ = m.runner.Run(ctx)
	}
}
