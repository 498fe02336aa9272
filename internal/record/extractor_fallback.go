package record

import (
	"context"
	"log/slog"

	dErrors "trialmatch/pkg/domain-errors"
	"trialmatch/pkg/platform/circuit"
)

// FallbackExtractor guards a primary extractor with a circuit breaker and
// degrades to a secondary one while the primary is unhealthy. Validation
// errors never trip the breaker; they describe the input, not the primary's
// health.
type FallbackExtractor struct {
	primary  Extractor
	fallback Extractor
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackExtractor(primary, fallback Extractor, breaker *circuit.Breaker, logger *slog.Logger) *FallbackExtractor {
	return &FallbackExtractor{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (e *FallbackExtractor) ExtractFromText(ctx context.Context, text string) (Record, error) {
	if !e.breaker.Allow() {
		e.logger.WarnContext(ctx, "extractor circuit open, using fallback")
		return e.fallback.ExtractFromText(ctx, text)
	}

	rec, err := e.primary.ExtractFromText(ctx, text)
	if err == nil {
		e.breaker.RecordSuccess()
		return rec, nil
	}
	if dErrors.HasCode(err, dErrors.CodeRecordValidation) {
		e.breaker.RecordSuccess()
		return Record{}, err
	}

	e.breaker.RecordFailure()
	e.logger.WarnContext(ctx, "primary extractor failed, using fallback", "error", err)
	return e.fallback.ExtractFromText(ctx, text)
}
