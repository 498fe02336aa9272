// Package matching implements the eligibility evaluation engine: the pure
// evaluator that decides one patient against one trial, and the orchestrator
// that runs it across a catalog.
package matching

import "time"

// Criterion is one named pass/fail eligibility check with a human-readable
// explanation. Ordering within a Decision is significant: it matches the
// order presented to a human reviewer.
type Criterion struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Decision is the full evaluation result for one (patient, trial) pair.
// Eligible is true iff every criterion passed; Confidence is always the
// exact fraction of passed criteria over the full ordered criterion list,
// never set independently of it.
type Decision struct {
	TrialID         string      `json:"trial_id"`
	Eligible        bool        `json:"eligible"`
	Confidence      float64     `json:"confidence"`
	Criteria        []Criterion `json:"criteria"`
	MissingCriteria []string    `json:"missing_criteria"`
}

// SkippedTrial records a trial excluded from a run because its definition
// failed validation.
type SkippedTrial struct {
	TrialID string `json:"trial_id"`
	Reason  string `json:"reason"`
}

// Report aggregates all decisions for one patient across a trial catalog,
// in catalog order. Built fresh per run, never mutated after construction.
// It is the sole handoff artifact to presentation consumers: everything a
// display needs is materialized here.
type Report struct {
	PatientRef        string         `json:"patient_ref"`
	GeneratedAt       time.Time      `json:"generated_at"`
	Decisions         []Decision     `json:"decisions"`
	SkippedTrials     []SkippedTrial `json:"skipped_trials"`
	EligibleCount     int            `json:"eligible_count"`
	AverageConfidence float64        `json:"average_confidence"`
}
