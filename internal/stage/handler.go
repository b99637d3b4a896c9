// Package stage defines the contract between the workflow manager and the
// per-status processing stages.
package stage

import (
	"context"

	"clipforge/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
