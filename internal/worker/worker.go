// Package worker runs periodic background tasks on independent tickers.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/YSC-hain/Message-Aggregator/internal/logger"
)

// Task is a periodic job driven by its own ticker.
type Task struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        func(ctx context.Context)
}

// Loop schedules tasks until the context is cancelled.
type Loop struct {
	tasks []Task
	log   *logger.Logger
}

// New creates a loop over the given tasks.
func New(tasks ...Task) *Loop {
	return &Loop{
		tasks: tasks,
		log:   logger.Get(),
	}
}

// Run blocks until ctx is cancelled, returning the context error. Each task
// ticks independently; a slow task only delays itself.
func (l *Loop) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, task := range l.tasks {
		if task.Interval <= 0 || task.Run == nil {
			l.log.Warn().Str("task", task.Name).Msg("worker: skipping task without interval or body")
			continue
		}

		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			l.runTask(ctx, task)
		}(task)
	}

	wg.Wait()
	return ctx.Err()
}

func (l *Loop) runTask(ctx context.Context, task Task) {
	l.log.Info().Str("task", task.Name).Dur("interval", task.Interval).Msg("worker: task scheduled")

	if task.RunOnStart {
		task.Run(ctx)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info().Str("task", task.Name).Msg("worker: task stopped")
			return
		case <-ticker.C:
			task.Run(ctx)
		}
	}
}
