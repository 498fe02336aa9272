package audit

import "context"

// Store persists audit events. Append-only: implementations must not expose
// mutation or deletion of emitted events. Both list operations return events
// in chronological order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPatient(ctx context.Context, patientRef string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
