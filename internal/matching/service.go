package matching

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"trialmatch/internal/audit"
	"trialmatch/internal/matching/metrics"
	"trialmatch/internal/matching/ports"
	"trialmatch/internal/record"
	"trialmatch/internal/trial"
	dErrors "trialmatch/pkg/domain-errors"
	"trialmatch/pkg/requestcontext"
)

// gatherTimeout bounds the pre-run phase (extraction + catalog load). The
// evaluation itself is pure CPU and needs no deadline.
const gatherTimeout = 30 * time.Second

// Service ties the extraction collaborator, the trial catalog, and the
// orchestrator together behind the operations the transport layer exposes.
type Service struct {
	extractor ports.ExtractorPort
	catalog   ports.CatalogPort
	auditor   ports.AuditPort
	orch      *Orchestrator
	stats     *Stats
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(
	extractor ports.ExtractorPort,
	catalog ports.CatalogPort,
	auditor ports.AuditPort,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	stats := NewStats()
	return &Service{
		extractor: extractor,
		catalog:   catalog,
		auditor:   auditor,
		orch:      NewOrchestrator(auditor, m, stats, logger),
		stats:     stats,
		metrics:   m,
		logger:    logger,
	}
}

// Screen extracts a patient record from raw text and runs it against the
// full catalog. Extraction and catalog load run concurrently; a record that
// fails validation blocks the run before orchestration begins and is itself
// audited.
func (s *Service) Screen(ctx context.Context, text string) (Report, error) {
	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	var (
		rec  record.Record
		defs []trial.Definition
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		extracted, err := s.extractor.ExtractFromText(gctx, text)
		if err != nil {
			return err
		}
		rec = extracted
		return nil
	})
	g.Go(func() error {
		listed, err := s.catalog.List(gctx)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "catalog load failed", err)
		}
		defs = listed
		return nil
	})

	if err := g.Wait(); err != nil {
		if dErrors.HasCode(err, dErrors.CodeRecordValidation) {
			s.rejectRecord(ctx, err)
		}
		return Report{}, err
	}

	return s.orch.Run(ctx, rec, defs), nil
}

// Match runs one pre-validated record against the full catalog.
func (s *Service) Match(ctx context.Context, rec record.Record) (Report, error) {
	defs, err := s.catalog.List(ctx)
	if err != nil {
		return Report{}, dErrors.Wrap(dErrors.CodeInternal, "catalog load failed", err)
	}
	return s.orch.Run(ctx, rec, defs), nil
}

// Stats returns the running aggregate across all runs of this service.
func (s *Service) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// ResetStats clears the aggregate. Exposed as an explicit operation; the
// aggregate is never cleared implicitly.
func (s *Service) ResetStats() {
	s.stats.Reset()
}

func (s *Service) rejectRecord(ctx context.Context, cause error) {
	s.metrics.IncrementRejected()
	s.logger.WarnContext(ctx, "patient record rejected",
		"request_id", requestcontext.RequestID(ctx),
		"error", cause,
	)
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		PatientRef: "unknown",
		Action:     audit.ActionRecordRejected,
		Reason:     cause.Error(),
		RequestID:  requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "error", err)
	}
}
