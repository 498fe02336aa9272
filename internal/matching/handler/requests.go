package handler

import (
	"strings"

	"trialmatch/internal/record"
	dErrors "trialmatch/pkg/domain-errors"
)

// maxScreenTextBytes bounds the raw-text payload so a stray document dump
// cannot tie up the extractor.
const maxScreenTextBytes = 64 * 1024

// ScreenRequest is the HTTP request body for POST /match/screen.
type ScreenRequest struct {
	Text string `json:"text"`
}

// Validate implements httputil.Validatable.
func (r *ScreenRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Text = strings.TrimSpace(r.Text)
	if r.Text == "" {
		return dErrors.New(dErrors.CodeValidation, "text is required")
	}
	if len(r.Text) > maxScreenTextBytes {
		return dErrors.New(dErrors.CodeValidation, "text exceeds maximum size")
	}
	return nil
}

// EvaluateRequest is the HTTP request body for POST /match/evaluate: a
// structured patient record that skips the extraction collaborator.
type EvaluateRequest struct {
	PatientRef  string             `json:"patient_ref"`
	Diagnosis   string             `json:"diagnosis"`
	Age         int                `json:"age"`
	Biomarkers  map[string]float64 `json:"biomarkers"`
	Medications []string           `json:"medications"`
	Location    string             `json:"location"`

	parsed record.Record
}

// Validate builds the validated record. Record invariants (age bounds,
// non-empty diagnosis) are enforced by record.New, not re-implemented here.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	rec, err := record.New(r.PatientRef, r.Diagnosis, r.Age, r.Biomarkers, r.Medications, r.Location)
	if err != nil {
		return err
	}
	r.parsed = rec
	return nil
}

// Record returns the validated patient record.
func (r *EvaluateRequest) Record() record.Record {
	return r.parsed
}
