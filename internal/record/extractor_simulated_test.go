package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trialmatch/pkg/domain-errors"
)

const sampleText = `Patient ID: P-99
Age: 52
Diagnosis: Type 2 Diabetes
Biomarkers: HbA1c: 8.2, glucose: 195
Medications: Metformin, Lisinopril
Location: Toronto`

func TestSimulatedExtractor_FullRecord(t *testing.T) {
	rec, err := NewSimulatedExtractor().ExtractFromText(context.Background(), sampleText)
	require.NoError(t, err)

	assert.Equal(t, "P-99", rec.Ref)
	assert.Equal(t, 52, rec.Age)
	assert.Equal(t, "Type 2 Diabetes", rec.Diagnosis)
	assert.Equal(t, map[string]float64{"HbA1c": 8.2, "glucose": 195}, rec.Biomarkers)
	assert.Equal(t, []string{"Metformin", "Lisinopril"}, rec.Medications)
	assert.Equal(t, "Toronto", rec.Location)
}

func TestSimulatedExtractor_MinimalRecord(t *testing.T) {
	rec, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"Age: 40\nDiagnosis: Asthma")
	require.NoError(t, err)

	assert.Equal(t, 40, rec.Age)
	assert.Equal(t, "Asthma", rec.Diagnosis)
	assert.NotEmpty(t, rec.Ref, "missing patient id gets a generated ref")
	assert.Empty(t, rec.Medications)
}

func TestSimulatedExtractor_MissingAge(t *testing.T) {
	_, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"Diagnosis: Asthma\nLocation: Toronto")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordValidation))
}

func TestSimulatedExtractor_BadAge(t *testing.T) {
	_, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"Age: fifty\nDiagnosis: Asthma")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordValidation))
}

func TestSimulatedExtractor_BadBiomarkerValue(t *testing.T) {
	_, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"Age: 52\nDiagnosis: Type 2 Diabetes\nBiomarkers: HbA1c: high")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordValidation))
}

func TestSimulatedExtractor_IgnoresUnknownLines(t *testing.T) {
	rec, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"Notes from intake visit\nAge: 52\nDiagnosis: Type 2 Diabetes\nAllergies: none")
	require.NoError(t, err)
	assert.Equal(t, 52, rec.Age)
}

func TestSimulatedExtractor_KeyNormalization(t *testing.T) {
	rec, err := NewSimulatedExtractor().ExtractFromText(context.Background(),
		"patient id: P-7\nAGE: 30\ndiagnosis: Asthma")
	require.NoError(t, err)
	assert.Equal(t, "P-7", rec.Ref)
	assert.Equal(t, 30, rec.Age)
}
