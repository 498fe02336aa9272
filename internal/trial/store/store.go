// Package store provides catalog storage for trial definitions.
package store

import (
	"context"

	"trialmatch/internal/trial"
)

// Catalog supplies the ordered sequence of trial definitions for a screening
// run. Implementations must preserve insertion order: catalog order is
// caller-defined and flows through to report ordering.
type Catalog interface {
	// List returns all definitions in catalog order.
	List(ctx context.Context) ([]trial.Definition, error)

	// Get returns one definition by trial ID.
	Get(ctx context.Context, trialID string) (trial.Definition, error)

	// Put appends a definition, or replaces it in place when the ID already
	// exists (replacement keeps the original catalog position).
	Put(ctx context.Context, def trial.Definition) error
}
