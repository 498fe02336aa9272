// Package trial defines the declarative eligibility specification for one
// clinical trial and the invariants the catalog must uphold.
package trial

import (
	"math"
	"strings"

	dErrors "trialmatch/pkg/domain-errors"
)

// AgeRange is an inclusive age window.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// BiomarkerRange is one mandatory biomarker requirement. A biomarker named
// here is required evidence: its absence from the patient record counts
// against eligibility, never as a skip. Ranges are kept as a slice because
// the declared order drives the order criteria are presented to reviewers.
type BiomarkerRange struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Definition is one trial's eligibility specification. Definitions are
// read-only for the lifetime of the process and owned by the catalog.
type Definition struct {
	ID                  string           `json:"trial_id"`
	Title               string           `json:"title,omitempty"`
	Phase               string           `json:"phase,omitempty"`
	RequiredDiagnosis   string           `json:"required_diagnosis"`
	AgeRange            AgeRange         `json:"age_range"`
	Biomarkers          []BiomarkerRange `json:"biomarker_ranges,omitempty"`
	ExcludedMedications []string         `json:"excluded_medications,omitempty"`
	// EligibleLocations empty means no location restriction.
	EligibleLocations []string `json:"eligible_locations,omitempty"`
}

// Validate enforces the definition's own invariants. A violation is a
// configuration error in trial data, not a patient-data error: the
// orchestrator skips the trial and keeps the run alive.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return dErrors.New(dErrors.CodeTrialConfiguration, "trial_id must not be empty")
	}
	if strings.TrimSpace(d.RequiredDiagnosis) == "" {
		return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: required_diagnosis must not be empty", d.ID)
	}
	if d.AgeRange.Min > d.AgeRange.Max {
		return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: age_range min %d exceeds max %d", d.ID, d.AgeRange.Min, d.AgeRange.Max)
	}

	seen := make(map[string]struct{}, len(d.Biomarkers))
	for _, b := range d.Biomarkers {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		if name == "" {
			return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: biomarker name must not be empty", d.ID)
		}
		if _, dup := seen[name]; dup {
			return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: duplicate biomarker %s", d.ID, b.Name)
		}
		seen[name] = struct{}{}

		if math.IsNaN(b.Min) || math.IsNaN(b.Max) || math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
			return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: biomarker %s has non-finite bounds", d.ID, b.Name)
		}
		if b.Min > b.Max {
			return dErrors.Newf(dErrors.CodeTrialConfiguration, "trial %s: biomarker %s min %g exceeds max %g", d.ID, b.Name, b.Min, b.Max)
		}
	}

	return nil
}
