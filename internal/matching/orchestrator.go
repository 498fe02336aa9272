package matching

import (
	"context"
	"log/slog"
	"time"

	"trialmatch/internal/audit"
	"trialmatch/internal/matching/metrics"
	"trialmatch/internal/matching/ports"
	"trialmatch/internal/record"
	"trialmatch/internal/trial"
	"trialmatch/pkg/requestcontext"
)

// Orchestrator runs the evaluator across a trial catalog for one patient,
// aggregates decisions into a Report, updates the running Stats, and emits
// one audit event per evaluation and per skipped trial.
type Orchestrator struct {
	auditor ports.AuditPort
	metrics *metrics.Metrics
	stats   *Stats
	logger  *slog.Logger
}

func NewOrchestrator(auditor ports.AuditPort, m *metrics.Metrics, stats *Stats, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		auditor: auditor,
		metrics: m,
		stats:   stats,
		logger:  logger,
	}
}

// Run evaluates the patient against every definition in catalog order.
// A definition that fails its own validation is a configuration error, not a
// patient-data error: it is audited, skipped, and the run continues. Partial
// results are always returned; nothing in here aborts a multi-trial run.
func (o *Orchestrator) Run(ctx context.Context, rec record.Record, defs []trial.Definition) Report {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	report := Report{
		PatientRef:    rec.Ref,
		GeneratedAt:   start,
		Decisions:     make([]Decision, 0, len(defs)),
		SkippedTrials: []SkippedTrial{},
	}

	for _, def := range defs {
		if err := def.Validate(); err != nil {
			o.logger.WarnContext(ctx, "trial definition invalid, skipping",
				"request_id", requestID,
				"patient_ref", rec.Ref,
				"trial_id", def.ID,
				"error", err,
			)
			o.metrics.IncrementSkipped()
			report.SkippedTrials = append(report.SkippedTrials, SkippedTrial{
				TrialID: def.ID,
				Reason:  err.Error(),
			})
			o.emit(ctx, audit.Event{
				PatientRef: rec.Ref,
				TrialID:    def.ID,
				Action:     audit.ActionTrialSkipped,
				Reason:     err.Error(),
				RequestID:  requestID,
			})
			continue
		}

		decision := Evaluate(rec, def)
		report.Decisions = append(report.Decisions, decision)
		if decision.Eligible {
			report.EligibleCount++
		}

		o.stats.Observe(decision)
		o.metrics.IncrementEvaluation(decision.Eligible, decision.Confidence)
		o.emit(ctx, audit.Event{
			PatientRef: rec.Ref,
			TrialID:    decision.TrialID,
			Action:     audit.ActionTrialEvaluated,
			Decision:   decisionSummary(decision),
			Confidence: decision.Confidence,
			RequestID:  requestID,
		})
	}

	if len(report.Decisions) > 0 {
		var sum float64
		for _, d := range report.Decisions {
			sum += d.Confidence
		}
		report.AverageConfidence = sum / float64(len(report.Decisions))
	}

	o.metrics.ObserveRunDuration(time.Since(start))
	o.logger.InfoContext(ctx, "screening run complete",
		"request_id", requestID,
		"patient_ref", rec.Ref,
		"trials", len(defs),
		"eligible", report.EligibleCount,
		"skipped", len(report.SkippedTrials),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report
}

// emit writes one audit event. Audit failures are logged and swallowed: the
// trail is best-effort from the run's perspective and must never block a
// report from reaching the caller.
func (o *Orchestrator) emit(ctx context.Context, event audit.Event) {
	if o.auditor == nil {
		return
	}
	if err := o.auditor.Emit(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "audit emit failed",
			"patient_ref", event.PatientRef,
			"trial_id", event.TrialID,
			"action", string(event.Action),
			"error", err,
		)
	}
}

func decisionSummary(d Decision) string {
	if d.Eligible {
		return "eligible"
	}
	return "ineligible"
}
