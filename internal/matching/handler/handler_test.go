package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"trialmatch/internal/audit"
	"trialmatch/internal/matching"
	"trialmatch/internal/matching/handler/mocks"
	"trialmatch/internal/record"
	dErrors "trialmatch/pkg/domain-errors"
	"trialmatch/pkg/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService, *mocks.MockAuditReader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	service := mocks.NewMockService(ctrl)
	auditor := mocks.NewMockAuditReader(ctrl)

	r := chi.NewRouter()
	New(service, auditor, testLogger()).Register(r)
	return r, service, auditor
}

func sampleReport() matching.Report {
	return matching.Report{
		PatientRef:  "P-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Decisions: []matching.Decision{
			{
				TrialID:    "NCT001",
				Eligible:   true,
				Confidence: 1.0,
				Criteria: []matching.Criterion{
					{Name: "diagnosis", Passed: true, Detail: "diagnosis matches"},
				},
			},
		},
		SkippedTrials:     []matching.SkippedTrial{},
		EligibleCount:     1,
		AverageConfidence: 1.0,
	}
}

func TestHandleScreen(t *testing.T) {
	router, service, _ := newTestRouter(t)
	service.EXPECT().
		Screen(gomock.Any(), "Age: 52\nDiagnosis: Type 2 Diabetes").
		Return(sampleReport(), nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/match/screen",
		map[string]string{"text": "Age: 52\nDiagnosis: Type 2 Diabetes"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := testutil.UnmarshalResponse[ReportResponse](t, rec)
	assert.Equal(t, "P-1", body.PatientRef)
	require.Len(t, body.Decisions, 1)
	assert.Equal(t, []string{}, body.Decisions[0].MissingCriteria, "missing_criteria serializes as an array")
	assert.NotNil(t, body.SkippedTrials)
}

func TestHandleScreen_EmptyText(t *testing.T) {
	// Validation rejects the request before the service is consulted; the
	// strict mock has no Screen expectation.
	router, _, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/match/screen", map[string]string{"text": "   "})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleScreen_RecordValidationError(t *testing.T) {
	router, service, _ := newTestRouter(t)
	service.EXPECT().
		Screen(gomock.Any(), "Age: 300").
		Return(matching.Report{}, dErrors.New(dErrors.CodeRecordValidation, "age 300 outside valid range 0-120"))

	req := testutil.NewJSONRequest(t, http.MethodPost, "/match/screen", map[string]string{"text": "Age: 300"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleEvaluate(t *testing.T) {
	router, service, _ := newTestRouter(t)
	var matched record.Record
	service.EXPECT().
		Match(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec record.Record) (matching.Report, error) {
			matched = rec
			return sampleReport(), nil
		})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/match/evaluate", map[string]any{
		"patient_ref": "P-1",
		"diagnosis":   "Type 2 Diabetes",
		"age":         52,
		"biomarkers":  map[string]float64{"HbA1c": 8.2},
		"location":    "Toronto",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "P-1", matched.Ref)
	assert.Equal(t, 52, matched.Age)
}

func TestHandleEvaluate_InvalidRecord(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/match/evaluate", map[string]any{
		"patient_ref": "P-1",
		"diagnosis":   "Type 2 Diabetes",
		"age":         300,
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleStats(t *testing.T) {
	router, service, _ := newTestRouter(t)
	service.EXPECT().Stats().Return(matching.StatsSnapshot{
		TotalEvaluations:  4,
		EligibleMatches:   2,
		ConfidenceSum:     3.2,
		AverageConfidence: 0.8,
	})

	req := httptest.NewRequest(http.MethodGet, "/match/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := testutil.UnmarshalResponse[matching.StatsSnapshot](t, rec)
	assert.Equal(t, int64(4), body.TotalEvaluations)
	assert.Equal(t, 0.8, body.AverageConfidence)
}

func TestHandleStatsReset(t *testing.T) {
	router, service, _ := newTestRouter(t)
	service.EXPECT().ResetStats()

	req := httptest.NewRequest(http.MethodPost, "/match/stats/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleAuditEvents_ByPatient(t *testing.T) {
	router, _, auditor := newTestRouter(t)
	auditor.EXPECT().
		ListByPatient(gomock.Any(), "P-1").
		Return([]audit.Event{{PatientRef: "P-1", Action: audit.ActionTrialEvaluated}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/audit/events?patient_ref=P-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := testutil.UnmarshalResponse[map[string][]audit.Event](t, rec)
	assert.Len(t, (*body)["events"], 1)
}

func TestHandleAuditEvents_RecentWithLimit(t *testing.T) {
	router, _, auditor := newTestRouter(t)
	auditor.EXPECT().ListRecent(gomock.Any(), 5).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/audit/events?limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := testutil.UnmarshalResponse[map[string][]audit.Event](t, rec)
	assert.NotNil(t, (*body)["events"], "empty trail still serializes as an array")
}

func TestHandleAuditEvents_LimitBounds(t *testing.T) {
	router, _, auditor := newTestRouter(t)
	auditor.EXPECT().ListRecent(gomock.Any(), 100).Return(nil, nil).Times(4)

	for _, raw := range []string{"0", "-3", "5000", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/audit/events?limit="+raw, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "limit %q falls back to the default", raw)
	}
}
