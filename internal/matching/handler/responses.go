package handler

import (
	"time"

	"trialmatch/internal/matching"
)

// ReportResponse is the HTTP response for screening and evaluation calls.
// It materializes everything a display needs; consumers never reach into
// engine internals.
type ReportResponse struct {
	PatientRef        string             `json:"patient_ref"`
	GeneratedAt       time.Time          `json:"generated_at"`
	Decisions         []DecisionResponse `json:"decisions"`
	SkippedTrials     []SkippedResponse  `json:"skipped_trials"`
	EligibleCount     int                `json:"eligible_count"`
	AverageConfidence float64            `json:"average_confidence"`
}

type DecisionResponse struct {
	TrialID         string              `json:"trial_id"`
	Eligible        bool                `json:"eligible"`
	Confidence      float64             `json:"confidence"`
	Criteria        []CriterionResponse `json:"criteria"`
	MissingCriteria []string            `json:"missing_criteria"`
}

type CriterionResponse struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type SkippedResponse struct {
	TrialID string `json:"trial_id"`
	Reason  string `json:"reason"`
}

// FromReport converts a domain Report to its HTTP response.
func FromReport(report matching.Report) *ReportResponse {
	resp := &ReportResponse{
		PatientRef:        report.PatientRef,
		GeneratedAt:       report.GeneratedAt,
		Decisions:         make([]DecisionResponse, 0, len(report.Decisions)),
		SkippedTrials:     make([]SkippedResponse, 0, len(report.SkippedTrials)),
		EligibleCount:     report.EligibleCount,
		AverageConfidence: report.AverageConfidence,
	}

	for _, d := range report.Decisions {
		criteria := make([]CriterionResponse, 0, len(d.Criteria))
		for _, c := range d.Criteria {
			criteria = append(criteria, CriterionResponse(c))
		}
		missing := d.MissingCriteria
		if missing == nil {
			missing = []string{}
		}
		resp.Decisions = append(resp.Decisions, DecisionResponse{
			TrialID:         d.TrialID,
			Eligible:        d.Eligible,
			Confidence:      d.Confidence,
			Criteria:        criteria,
			MissingCriteria: missing,
		})
	}
	for _, skip := range report.SkippedTrials {
		resp.SkippedTrials = append(resp.SkippedTrials, SkippedResponse(skip))
	}
	return resp
}
