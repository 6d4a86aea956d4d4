package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_RunsTaskPeriodically(t *testing.T) {
	var runs atomic.Int32

	loop := New(Task{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) {
			runs.Add(1)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}

	if runs.Load() < 3 {
		t.Errorf("task ran %d times, want at least 3", runs.Load())
	}
}

func TestLoop_RunOnStart(t *testing.T) {
	var runs atomic.Int32

	loop := New(Task{
		Name:       "immediate",
		Interval:   time.Hour, // ticker never fires during the test
		RunOnStart: true,
		Run: func(ctx context.Context) {
			runs.Add(1)
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = loop.Run(ctx)

	if runs.Load() != 1 {
		t.Errorf("task ran %d times, want exactly 1 immediate run", runs.Load())
	}
}

func TestLoop_CancellationStopsTasks(t *testing.T) {
	loop := New(Task{
		Name:     "stoppable",
		Interval: 5 * time.Millisecond,
		Run:      func(ctx context.Context) {},
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestLoop_SkipsInvalidTasks(t *testing.T) {
	loop := New(
		Task{Name: "no interval", Run: func(ctx context.Context) {}},
		Task{Name: "no body", Interval: time.Millisecond},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// returns promptly because nothing is scheduled
	start := time.Now()
	_ = loop.Run(ctx)
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Run() should return immediately with no runnable tasks")
	}
}
