package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trialmatch/internal/trial"
	dErrors "trialmatch/pkg/domain-errors"
)

// PostgresCatalog persists trial definitions in PostgreSQL. Catalog order is
// materialized in a position column so List returns definitions in the order
// they were first inserted, matching the memory implementation.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Schema returns the DDL this store expects. Callers apply it through their
// migration tooling; tests apply it directly.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS trial_definitions (
    trial_id             TEXT PRIMARY KEY,
    position             BIGSERIAL,
    title                TEXT NOT NULL DEFAULT '',
    phase                TEXT NOT NULL DEFAULT '',
    required_diagnosis   TEXT NOT NULL,
    age_min              INT NOT NULL,
    age_max              INT NOT NULL,
    biomarker_ranges     JSONB NOT NULL DEFAULT '[]',
    excluded_medications JSONB NOT NULL DEFAULT '[]',
    eligible_locations   JSONB NOT NULL DEFAULT '[]'
);`
}

func (c *PostgresCatalog) List(ctx context.Context) ([]trial.Definition, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT trial_id, title, phase, required_diagnosis, age_min, age_max,
		       biomarker_ranges, excluded_medications, eligible_locations
		FROM trial_definitions
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list trial definitions: %w", err)
	}
	defer rows.Close()

	var defs []trial.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trial definitions: %w", err)
	}
	return defs, nil
}

func (c *PostgresCatalog) Get(ctx context.Context, trialID string) (trial.Definition, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT trial_id, title, phase, required_diagnosis, age_min, age_max,
		       biomarker_ranges, excluded_medications, eligible_locations
		FROM trial_definitions
		WHERE trial_id = $1`, trialID)

	def, err := scanDefinition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return trial.Definition{}, dErrors.Newf(dErrors.CodeNotFound, "trial %s not found", trialID)
	}
	return def, err
}

func (c *PostgresCatalog) Put(ctx context.Context, def trial.Definition) error {
	if def.ID == "" {
		return dErrors.New(dErrors.CodeTrialConfiguration, "trial_id must not be empty")
	}

	biomarkers, err := json.Marshal(orEmptyRanges(def.Biomarkers))
	if err != nil {
		return fmt.Errorf("marshal biomarker ranges: %w", err)
	}
	medications, err := json.Marshal(orEmpty(def.ExcludedMedications))
	if err != nil {
		return fmt.Errorf("marshal excluded medications: %w", err)
	}
	locations, err := json.Marshal(orEmpty(def.EligibleLocations))
	if err != nil {
		return fmt.Errorf("marshal eligible locations: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO trial_definitions
			(trial_id, title, phase, required_diagnosis, age_min, age_max,
			 biomarker_ranges, excluded_medications, eligible_locations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (trial_id) DO UPDATE SET
			title = EXCLUDED.title,
			phase = EXCLUDED.phase,
			required_diagnosis = EXCLUDED.required_diagnosis,
			age_min = EXCLUDED.age_min,
			age_max = EXCLUDED.age_max,
			biomarker_ranges = EXCLUDED.biomarker_ranges,
			excluded_medications = EXCLUDED.excluded_medications,
			eligible_locations = EXCLUDED.eligible_locations`,
		def.ID, def.Title, def.Phase, def.RequiredDiagnosis,
		def.AgeRange.Min, def.AgeRange.Max,
		biomarkers, medications, locations)
	if err != nil {
		return fmt.Errorf("put trial definition %s: %w", def.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefinition(row rowScanner) (trial.Definition, error) {
	var (
		def                              trial.Definition
		biomarkers, medications, locRaws []byte
	)
	err := row.Scan(&def.ID, &def.Title, &def.Phase, &def.RequiredDiagnosis,
		&def.AgeRange.Min, &def.AgeRange.Max,
		&biomarkers, &medications, &locRaws)
	if err != nil {
		return trial.Definition{}, err
	}

	if err := json.Unmarshal(biomarkers, &def.Biomarkers); err != nil {
		return trial.Definition{}, fmt.Errorf("unmarshal biomarker ranges for %s: %w", def.ID, err)
	}
	if err := json.Unmarshal(medications, &def.ExcludedMedications); err != nil {
		return trial.Definition{}, fmt.Errorf("unmarshal excluded medications for %s: %w", def.ID, err)
	}
	if err := json.Unmarshal(locRaws, &def.EligibleLocations); err != nil {
		return trial.Definition{}, fmt.Errorf("unmarshal eligible locations for %s: %w", def.ID, err)
	}
	return def, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyRanges(s []trial.BiomarkerRange) []trial.BiomarkerRange {
	if s == nil {
		return []trial.BiomarkerRange{}
	}
	return s
}
