package store

import (
	"context"
	"slices"
	"sync"

	"trialmatch/internal/trial"
	dErrors "trialmatch/pkg/domain-errors"
)

// MemoryCatalog is an in-memory, order-preserving catalog. It is the default
// backend for development and tests, and the reference implementation for
// the ordering contract.
type MemoryCatalog struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]trial.Definition
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{defs: make(map[string]trial.Definition)}
}

func (c *MemoryCatalog) List(_ context.Context) ([]trial.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]trial.Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out, nil
}

func (c *MemoryCatalog) Get(_ context.Context, trialID string) (trial.Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.defs[trialID]
	if !ok {
		return trial.Definition{}, dErrors.Newf(dErrors.CodeNotFound, "trial %s not found", trialID)
	}
	return def, nil
}

func (c *MemoryCatalog) Put(_ context.Context, def trial.Definition) error {
	if def.ID == "" {
		return dErrors.New(dErrors.CodeTrialConfiguration, "trial_id must not be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.order, def.ID) {
		c.order = append(c.order, def.ID)
	}
	c.defs[def.ID] = def
	return nil
}
