// Package audit captures the append-only evaluation trail. Every trial
// evaluation emits exactly one event, as does every configuration-skipped
// trial and every rejected patient record. Events are never mutated or
// deleted after emission.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the kind of event recorded.
type Action string

const (
	// ActionTrialEvaluated records one completed evaluation of a patient
	// against one trial.
	ActionTrialEvaluated Action = "trial_evaluated"

	// ActionTrialSkipped records a trial excluded from a run because its
	// definition failed validation.
	ActionTrialSkipped Action = "trial_skipped"

	// ActionRecordRejected records a patient record that failed validation
	// before orchestration began.
	ActionRecordRejected Action = "record_rejected"
)

// Event is one audit trail entry. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	PatientRef string    `json:"patient_ref"`
	TrialID    string    `json:"trial_id,omitempty"`
	Action     Action    `json:"action"`
	// Decision summarizes the outcome: "eligible"/"ineligible" for
	// evaluations, empty for skips and rejections.
	Decision string `json:"decision,omitempty"`
	// Confidence is never omitted: a fully failing evaluation legitimately
	// scores 0.
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
	RequestID  string  `json:"request_id,omitempty"`
}
