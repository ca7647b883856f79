package scheduler

import "context"

// Job is a unit of work executed by the worker pool. Jobs are keyed by
// card so logs and telemetry can attribute work to the card being
// processed.
type Job interface {
	// Execute runs the job. Context should be respected for
	// cancellation and timeouts.
	Execute(ctx context.Context) error

	// CardID returns the card this job operates on.
	CardID() string

	// Description returns a human-readable description for logging.
	Description() string
}
