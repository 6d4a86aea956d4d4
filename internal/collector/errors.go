package collector

import "errors"

// errors
var (
	// ErrAlreadyRunning is returned when a collection run is requested while
	// another one is still in progress.
	ErrAlreadyRunning = errors.New("a collection run is already in progress")

	// ErrChannelUnreachable marks a channel that could not be resolved or
	// fetched; callers skip the channel instead of aborting the run.
	ErrChannelUnreachable = errors.New("channel unreachable")

	// ErrWatermarkPersistence is fatal to a run: if the final watermark write
	// fails, the run must not report success or the next run may silently
	// refetch or skip messages.
	ErrWatermarkPersistence = errors.New("watermark persistence failed")
)
