package server

import (
	"context"

	"github.com/preston-bernstein/fixture-data-service/internal/reconciler"
)

// Reconciler is the background loop behaviour the server needs.
type Reconciler interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() reconciler.Status
}

// Warmer fills the cache in the background until ctx ends.
type Warmer interface {
	Run(ctx context.Context)
}
