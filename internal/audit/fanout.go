package audit

import (
	"context"
	"errors"
)

// Sink receives a copy of every appended event. Sinks cannot serve reads;
// that stays with the primary store.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// FanoutStore appends to a primary store and forwards to secondary sinks
// (e.g. Kafka). The primary write is authoritative: its failure fails the
// append. Sink failures are joined into the returned error but do not undo
// the primary write.
type FanoutStore struct {
	primary Store
	sinks   []Sink
}

func NewFanout(primary Store, sinks ...Sink) *FanoutStore {
	return &FanoutStore{primary: primary, sinks: sinks}
}

func (f *FanoutStore) Append(ctx context.Context, event Event) error {
	if err := f.primary.Append(ctx, event); err != nil {
		return err
	}

	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutStore) ListByPatient(ctx context.Context, patientRef string) ([]Event, error) {
	return f.primary.ListByPatient(ctx, patientRef)
}

func (f *FanoutStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return f.primary.ListRecent(ctx, limit)
}
