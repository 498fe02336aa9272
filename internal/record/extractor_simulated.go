package record

import (
	"context"
	"strconv"
	"strings"

	dErrors "trialmatch/pkg/domain-errors"
)

// SimulatedExtractor parses the key/value medical-record format used in
// demos and tests. It stands in for the language-model extractor and keeps
// the rest of the system runnable without an API key.
//
// Expected shape, one field per line:
//
//	Patient ID: P-99
//	Age: 52
//	Diagnosis: Type 2 Diabetes
//	Biomarkers: HbA1c: 8.2, glucose: 195
//	Medications: Metformin
//	Location: Toronto
type SimulatedExtractor struct{}

func NewSimulatedExtractor() *SimulatedExtractor {
	return &SimulatedExtractor{}
}

func (e *SimulatedExtractor) ExtractFromText(_ context.Context, text string) (Record, error) {
	var (
		ref, diagnosis, location string
		age                      int
		ageSeen                  bool
		biomarkers               = map[string]float64{}
		medications              []string
	)

	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch normalizeKey(key) {
		case "patientid", "id":
			ref = value
		case "age":
			parsed, err := strconv.Atoi(value)
			if err != nil {
				return Record{}, dErrors.Newf(dErrors.CodeRecordValidation, "age %q is not an integer", value)
			}
			age = parsed
			ageSeen = true
		case "diagnosis":
			diagnosis = value
		case "biomarkers":
			parsed, err := parseBiomarkers(value)
			if err != nil {
				return Record{}, err
			}
			biomarkers = parsed
		case "medications":
			for _, med := range strings.Split(value, ",") {
				if med = strings.TrimSpace(med); med != "" {
					medications = append(medications, med)
				}
			}
		case "location":
			location = value
		}
	}

	if !ageSeen {
		return Record{}, dErrors.New(dErrors.CodeRecordValidation, "record text is missing an age field")
	}

	return New(ref, diagnosis, age, biomarkers, medications, location)
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, " ", "")
}

// parseBiomarkers reads "name: value" pairs separated by commas. The colon
// after the field label has already been consumed by the caller, so the
// remainder alternates name/value around colons.
func parseBiomarkers(value string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, raw, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, dErrors.Newf(dErrors.CodeRecordValidation, "biomarker entry %q is not name: value", pair)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, dErrors.Newf(dErrors.CodeRecordValidation, "biomarker %s has non-numeric value %q", strings.TrimSpace(name), strings.TrimSpace(raw))
		}
		out[strings.TrimSpace(name)] = parsed
	}
	return out, nil
}
