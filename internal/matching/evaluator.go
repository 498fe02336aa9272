package matching

import (
	"fmt"
	"math"
	"strings"

	"trialmatch/internal/record"
	"trialmatch/internal/trial"
)

// Criterion names, in the fixed evaluation order. Biomarker criteria are
// named "biomarker:<name>" and slot between age and medications in the
// trial's declared order.
const (
	CriterionDiagnosis   = "diagnosis"
	CriterionAge         = "age"
	CriterionMedications = "medications"
	CriterionLocation    = "location"
)

// Evaluate decides one patient's eligibility for one trial, explainably and
// reproducibly. It is a pure function: no I/O, no shared state, safe to call
// concurrently. Every criterion is checked even after a failure because the
// full reasoning trail is the product's core value; there is no
// short-circuiting.
//
// Confidence is the plain ratio of passed to total criteria. A production
// scoring model would replace this with calibrated probabilities; the ratio
// is the defined behavior here, not a placeholder bug.
func Evaluate(rec record.Record, def trial.Definition) Decision {
	criteria := make([]Criterion, 0, 4+len(def.Biomarkers))
	missing := []string{}

	// 1. Diagnosis: case-insensitive exact match.
	if strings.EqualFold(rec.Diagnosis, def.RequiredDiagnosis) {
		criteria = append(criteria, Criterion{
			Name:   CriterionDiagnosis,
			Passed: true,
			Detail: fmt.Sprintf("diagnosis %s matches required diagnosis", rec.Diagnosis),
		})
	} else {
		criteria = append(criteria, Criterion{
			Name:   CriterionDiagnosis,
			Detail: fmt.Sprintf("diagnosis %s does not match required %s", rec.Diagnosis, def.RequiredDiagnosis),
		})
	}

	// 2. Age: inclusive bounds.
	if rec.Age >= def.AgeRange.Min && rec.Age <= def.AgeRange.Max {
		criteria = append(criteria, Criterion{
			Name:   CriterionAge,
			Passed: true,
			Detail: fmt.Sprintf("age %d within range %d-%d", rec.Age, def.AgeRange.Min, def.AgeRange.Max),
		})
	} else {
		criteria = append(criteria, Criterion{
			Name:   CriterionAge,
			Detail: fmt.Sprintf("age %d outside range %d-%d", rec.Age, def.AgeRange.Min, def.AgeRange.Max),
		})
	}

	// 3. Biomarkers, in the trial's declared order. A biomarker named by the
	// trial is mandatory evidence: absence fails the criterion and is
	// reported in missing_criteria, never skipped.
	for _, b := range def.Biomarkers {
		criteria = append(criteria, evaluateBiomarker(rec, b, &missing))
	}

	// 4. Medication exclusion: case-folded intersection, every offending
	// medication listed. A trial with no declared exclusions contributes no
	// medication criterion, so the denominator reflects only checks the
	// trial actually asks for.
	if len(def.ExcludedMedications) > 0 {
		if offending := excludedIntersection(rec.Medications, def.ExcludedMedications); len(offending) > 0 {
			criteria = append(criteria, Criterion{
				Name:   CriterionMedications,
				Detail: "taking excluded medications: " + strings.Join(offending, ", "),
			})
		} else {
			criteria = append(criteria, Criterion{
				Name:   CriterionMedications,
				Passed: true,
				Detail: "no excluded medications",
			})
		}
	}

	// 5. Location: empty eligible set means no restriction.
	criteria = append(criteria, evaluateLocation(rec.Location, def.EligibleLocations))

	passed := 0
	for _, c := range criteria {
		if c.Passed {
			passed++
		}
	}

	// Eligibility is a hard gate: every criterion must pass. Partial credit
	// never yields eligibility; ties resolve to ineligible.
	return Decision{
		TrialID:         def.ID,
		Eligible:        passed == len(criteria),
		Confidence:      float64(passed) / float64(len(criteria)),
		Criteria:        criteria,
		MissingCriteria: missing,
	}
}

func evaluateBiomarker(rec record.Record, b trial.BiomarkerRange, missing *[]string) Criterion {
	name := CriterionBiomarker(b.Name)

	// A non-finite bound reaching this point means catalog validation was
	// bypassed. Report it as a failing criterion rather than panicking so
	// the run still completes.
	if math.IsNaN(b.Min) || math.IsNaN(b.Max) || math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
		return Criterion{
			Name:   name,
			Detail: fmt.Sprintf("invalid biomarker range for %s: non-finite bounds", b.Name),
		}
	}

	value, ok := rec.Biomarkers[b.Name]
	if !ok {
		*missing = append(*missing, b.Name)
		return Criterion{
			Name:   name,
			Detail: fmt.Sprintf("missing biomarker %s", b.Name),
		}
	}

	if value >= b.Min && value <= b.Max {
		return Criterion{
			Name:   name,
			Passed: true,
			Detail: fmt.Sprintf("%s %g within range %g-%g", b.Name, value, b.Min, b.Max),
		}
	}
	return Criterion{
		Name:   name,
		Detail: fmt.Sprintf("%s %g outside range %g-%g", b.Name, value, b.Min, b.Max),
	}
}

// CriterionBiomarker returns the criterion name for one biomarker check.
func CriterionBiomarker(name string) string {
	return "biomarker:" + name
}

// excludedIntersection returns the patient's medications that appear in the
// exclusion list, compared case-insensitively, in the order the patient
// record lists them so output stays deterministic.
func excludedIntersection(medications, excluded []string) []string {
	if len(medications) == 0 || len(excluded) == 0 {
		return nil
	}

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, m := range excluded {
		excludedSet[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}

	var offending []string
	for _, m := range medications {
		if _, hit := excludedSet[strings.ToLower(strings.TrimSpace(m))]; hit {
			offending = append(offending, m)
		}
	}
	return offending
}

func evaluateLocation(location string, eligible []string) Criterion {
	if len(eligible) == 0 {
		return Criterion{
			Name:   CriterionLocation,
			Passed: true,
			Detail: "no location restriction",
		}
	}

	for _, site := range eligible {
		if strings.EqualFold(strings.TrimSpace(site), location) {
			return Criterion{
				Name:   CriterionLocation,
				Passed: true,
				Detail: fmt.Sprintf("location %s is an eligible site", location),
			}
		}
	}
	return Criterion{
		Name:   CriterionLocation,
		Detail: fmt.Sprintf("location %s not among eligible sites %s", location, strings.Join(eligible, ", ")),
	}
}
