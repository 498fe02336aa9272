// Package record defines the validated patient record the matching engine
// consumes, plus the extraction port that produces records from raw text.
package record

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	dErrors "trialmatch/pkg/domain-errors"
)

const (
	// MinAge and MaxAge bound plausible patient ages. Values outside the
	// range are rejected at construction, never clamped.
	MinAge = 0
	MaxAge = 120
)

// Record is one validated patient. It is created once by the extraction
// collaborator, never mutated after construction, and discarded after a
// single screening run. All fields are read here only after New has
// enforced the invariants.
type Record struct {
	Ref         string
	Diagnosis   string
	Age         int
	Biomarkers  map[string]float64
	Medications []string
	Location    string
}

// New validates and constructs a Record. Input maps and slices are copied so
// the record cannot be mutated through the caller's references.
func New(ref, diagnosis string, age int, biomarkers map[string]float64, medications []string, location string) (Record, error) {
	if strings.TrimSpace(diagnosis) == "" {
		return Record{}, dErrors.New(dErrors.CodeRecordValidation, "diagnosis must not be empty")
	}
	if age < MinAge || age > MaxAge {
		return Record{}, dErrors.Newf(dErrors.CodeRecordValidation, "age %d outside valid range %d-%d", age, MinAge, MaxAge)
	}
	for name, value := range biomarkers {
		if strings.TrimSpace(name) == "" {
			return Record{}, dErrors.New(dErrors.CodeRecordValidation, "biomarker name must not be empty")
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Record{}, dErrors.Newf(dErrors.CodeRecordValidation, "biomarker %s has non-numeric value", name)
		}
	}

	if strings.TrimSpace(ref) == "" {
		ref = "patient-" + uuid.NewString()
	}

	return Record{
		Ref:         strings.TrimSpace(ref),
		Diagnosis:   strings.TrimSpace(diagnosis),
		Age:         age,
		Biomarkers:  maps.Clone(biomarkers),
		Medications: slices.Clone(medications),
		Location:    strings.TrimSpace(location),
	}, nil
}
