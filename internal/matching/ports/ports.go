// Package ports defines the interfaces the matching engine depends on.
// They are declared here, per module, so the engine never imports transport
// or storage implementations directly.
package ports

import (
	"context"

	"trialmatch/internal/audit"
	"trialmatch/internal/record"
	"trialmatch/internal/trial"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks AuditPort,CatalogPort,ExtractorPort

// AuditPort emits append-only audit events. Matches audit.Publisher.
type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}

// CatalogPort supplies the ordered trial catalog for a run. The engine
// treats the result as read-only.
type CatalogPort interface {
	List(ctx context.Context) ([]trial.Definition, error)
}

// ExtractorPort produces a validated patient record from raw text, or a
// record-validation error. The engine depends only on this contract, not on
// how extraction is implemented.
type ExtractorPort interface {
	ExtractFromText(ctx context.Context, text string) (record.Record, error)
}
