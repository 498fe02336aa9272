package audit

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
)

// PostgresStore persists audit events in PostgreSQL. Inserts only; the table
// carries no update or delete path so the trail stays append-only at the
// storage layer too.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema returns the DDL this store expects.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS audit_events (
    id          UUID PRIMARY KEY,
    ts          TIMESTAMPTZ NOT NULL,
    patient_ref TEXT NOT NULL,
    trial_id    TEXT NOT NULL DEFAULT '',
    action      TEXT NOT NULL,
    decision    TEXT NOT NULL DEFAULT '',
    confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
    reason      TEXT NOT NULL DEFAULT '',
    request_id  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_patient_ref_idx ON audit_events (patient_ref);`
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, ts, patient_ref, trial_id, action, decision, confidence, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Timestamp, event.PatientRef, event.TrialID,
		string(event.Action), event.Decision, event.Confidence, event.Reason, event.RequestID)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByPatient(ctx context.Context, patientRef string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, patient_ref, trial_id, action, decision, confidence, reason, request_id
		FROM audit_events
		WHERE patient_ref = $1
		ORDER BY ts`, patientRef)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, patient_ref, trial_id, action, decision, confidence, reason, request_id
		FROM audit_events
		ORDER BY ts DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	// The query selects newest-first; callers get chronological order.
	slices.Reverse(events)
	return events, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var (
			e      Event
			action string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.PatientRef, &e.TrialID,
			&action, &e.Decision, &e.Confidence, &e.Reason, &e.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}
