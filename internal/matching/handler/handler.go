package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trialmatch/internal/audit"
	"trialmatch/internal/matching"
	"trialmatch/internal/record"
	"trialmatch/pkg/platform/httputil"
	"trialmatch/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,AuditReader

// Service defines the interface for screening operations.
type Service interface {
	Screen(ctx context.Context, text string) (matching.Report, error)
	Match(ctx context.Context, rec record.Record) (matching.Report, error)
	Stats() matching.StatsSnapshot
	ResetStats()
}

// AuditReader lists emitted audit events for review.
type AuditReader interface {
	ListByPatient(ctx context.Context, patientRef string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler wires screening endpoints to the matching service.
type Handler struct {
	service Service
	auditor AuditReader
	logger  *slog.Logger
}

// New constructs a matching handler with its dependencies.
func New(service Service, auditor AuditReader, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		auditor: auditor,
		logger:  logger,
	}
}

// Register mounts matching endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/match/screen", h.HandleScreen)
	r.Post("/match/evaluate", h.HandleEvaluate)
	r.Get("/match/stats", h.HandleStats)
	r.Post("/match/stats/reset", h.HandleStatsReset)
	r.Get("/audit/events", h.HandleAuditEvents)
}

// HandleScreen handles POST /match/screen: raw medical text in, report out.
func (h *Handler) HandleScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ScreenRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	report, err := h.service.Screen(ctx, req.Text)
	if err != nil {
		h.logger.ErrorContext(ctx, "screening failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "screening complete",
		"request_id", requestID,
		"patient_ref", report.PatientRef,
		"eligible_count", report.EligibleCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleEvaluate handles POST /match/evaluate: structured record in,
// report out. Bypasses the extraction collaborator.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, requestID)
	if !ok {
		return
	}

	report, err := h.service.Match(ctx, req.Record())
	if err != nil {
		h.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestID,
			"patient_ref", req.PatientRef,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}

// HandleStats handles GET /match/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Stats())
}

// HandleStatsReset handles POST /match/stats/reset.
func (h *Handler) HandleStatsReset(w http.ResponseWriter, r *http.Request) {
	h.service.ResetStats()
	h.logger.InfoContext(r.Context(), "run statistics reset",
		"request_id", requestcontext.RequestID(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuditEvents handles GET /audit/events. With patient_ref it returns
// one patient's trail; without, the most recent events.
func (h *Handler) HandleAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ref := r.URL.Query().Get("patient_ref"); ref != "" {
		events, err := h.auditor.ListByPatient(ctx, ref)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, eventsBody(events))
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	events, err := h.auditor.ListRecent(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eventsBody(events))
}

func eventsBody(events []audit.Event) map[string][]audit.Event {
	if events == nil {
		events = []audit.Event{}
	}
	return map[string][]audit.Event{"events": events}
}
