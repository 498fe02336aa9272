package store

import (
	"context"

	"trialmatch/internal/trial"
)

// Seed loads a small demo catalog so a fresh deployment has trials to screen
// against before a real feed is wired in.
func Seed(ctx context.Context, catalog Catalog) error {
	defs := []trial.Definition{
		{
			ID:                "NCT001",
			Title:             "Diabetes Phase 3",
			Phase:             "Phase 3",
			RequiredDiagnosis: "Type 2 Diabetes",
			AgeRange:          trial.AgeRange{Min: 18, Max: 75},
			Biomarkers: []trial.BiomarkerRange{
				{Name: "HbA1c", Min: 7.5, Max: 11.0},
			},
			ExcludedMedications: []string{"Insulin"},
			EligibleLocations:   []string{"Toronto", "Montreal"},
		},
		{
			ID:                  "NCT002",
			Title:               "Hypertension Study",
			Phase:               "Phase 2",
			RequiredDiagnosis:   "Hypertension",
			AgeRange:            trial.AgeRange{Min: 40, Max: 80},
			EligibleLocations:   []string{"Vancouver"},
			ExcludedMedications: nil,
		},
		{
			ID:                "NCT003",
			Title:             "Glycemic Control Study",
			Phase:             "Phase 2",
			RequiredDiagnosis: "Type 2 Diabetes",
			AgeRange:          trial.AgeRange{Min: 45, Max: 80},
			Biomarkers: []trial.BiomarkerRange{
				{Name: "HbA1c", Min: 7.5, Max: 11.0},
				{Name: "glucose", Min: 140, Max: 250},
			},
			EligibleLocations: []string{"Toronto"},
		},
	}

	for _, def := range defs {
		if err := catalog.Put(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
