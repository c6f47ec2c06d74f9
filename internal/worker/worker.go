package worker

import (
	"context"
)

// Worker is the contract every background worker satisfies.
type Worker interface {
	// Start runs the worker loop until Stop or ctx cancellation.
	Start(ctx context.Context) error

	// Stop requests a shutdown.
	Stop() error

	// Name identifies the worker in logs.
	Name() string
}
