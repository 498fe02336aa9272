package audit

import (
	"context"
	"log/slog"

	dErrors "trialmatch/pkg/domain-errors"
)

const defaultInboxSize = 256

// Worker is an asynchronous Sink adapter. Append buffers the event and
// returns immediately; a background goroutine running Run forwards buffered
// events to the wrapped sink. Put slow sinks such as Kafka behind a Worker
// so the request path never waits on them.
type Worker struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = defaultInboxSize
	}
	return &Worker{
		sink:   sink,
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Append enqueues the event for background delivery. A full inbox fails the
// append instead of blocking the caller.
func (w *Worker) Append(_ context.Context, event Event) error {
	select {
	case w.inbox <- event:
		return nil
	default:
		return dErrors.New(dErrors.CodeInternal, "audit worker inbox full")
	}
}

// Run drains the inbox until ctx is cancelled. A delivery failure drops that
// event with an error log and keeps the worker running.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit sink delivery failed",
					"action", event.Action,
					"patient_ref", event.PatientRef,
					"error", err,
				)
			}
		}
	}
}
