package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trialmatch/internal/trial"
	dErrors "trialmatch/pkg/domain-errors"
)

func TestMemoryCatalog_PutAndGet(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	def := trial.Definition{ID: "NCT001", RequiredDiagnosis: "Diabetes", AgeRange: trial.AgeRange{Min: 18, Max: 65}}
	require.NoError(t, catalog.Put(ctx, def))

	got, err := catalog.Get(ctx, "NCT001")
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestMemoryCatalog_GetMissing(t *testing.T) {
	_, err := NewMemoryCatalog().Get(context.Background(), "NCT404")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMemoryCatalog_PutEmptyID(t *testing.T) {
	err := NewMemoryCatalog().Put(context.Background(), trial.Definition{RequiredDiagnosis: "Diabetes"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTrialConfiguration))
}

func TestMemoryCatalog_ListPreservesInsertionOrder(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	for i := range 5 {
		id := fmt.Sprintf("NCT%03d", i)
		require.NoError(t, catalog.Put(ctx, trial.Definition{ID: id, RequiredDiagnosis: "Diabetes"}))
	}

	defs, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 5)
	for i, def := range defs {
		assert.Equal(t, fmt.Sprintf("NCT%03d", i), def.ID)
	}
}

func TestMemoryCatalog_ReplaceKeepsPosition(t *testing.T) {
	catalog := NewMemoryCatalog()
	ctx := context.Background()

	require.NoError(t, catalog.Put(ctx, trial.Definition{ID: "NCT001", RequiredDiagnosis: "Diabetes"}))
	require.NoError(t, catalog.Put(ctx, trial.Definition{ID: "NCT002", RequiredDiagnosis: "Asthma"}))
	require.NoError(t, catalog.Put(ctx, trial.Definition{ID: "NCT001", RequiredDiagnosis: "Hypertension"}))

	defs, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "NCT001", defs[0].ID)
	assert.Equal(t, "Hypertension", defs[0].RequiredDiagnosis)
	assert.Equal(t, "NCT002", defs[1].ID)
}

func TestSeed(t *testing.T) {
	catalog := NewMemoryCatalog()
	require.NoError(t, Seed(context.Background(), catalog))

	defs, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "NCT001", defs[0].ID)
	assert.Equal(t, "NCT002", defs[1].ID)
	assert.Equal(t, "NCT003", defs[2].ID)

	for _, def := range defs {
		assert.NoError(t, def.Validate(), "seed trial %s must be valid", def.ID)
	}
}
