package itemcache

import "errors"

var (
	// ErrDrainTimeout is returned by Close when background tasks were still
	// running at the deadline and were abandoned.
	ErrDrainTimeout = errors.New("background tasks abandoned at shutdown")

	errRunnerClosed = errors.New("task runner closed")
	errRunnerBusy   = errors.New("task runner at capacity")
)
