package record

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trialmatch/pkg/domain-errors"
	"trialmatch/pkg/platform/circuit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scriptedExtractor struct {
	rec   Record
	err   error
	calls int
}

func (s *scriptedExtractor) ExtractFromText(context.Context, string) (Record, error) {
	s.calls++
	return s.rec, s.err
}

func TestFallbackExtractor_PrimaryHealthy(t *testing.T) {
	rec, err := New("P-1", "Asthma", 40, nil, nil, "")
	require.NoError(t, err)

	primary := &scriptedExtractor{rec: rec}
	fallback := &scriptedExtractor{}
	fe := NewFallbackExtractor(primary, fallback, circuit.New(3, time.Minute), testLogger())

	got, extractErr := fe.ExtractFromText(context.Background(), "text")
	require.NoError(t, extractErr)
	assert.Equal(t, rec, got)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackExtractor_DegradesOnPrimaryFailure(t *testing.T) {
	rec, err := New("P-1", "Asthma", 40, nil, nil, "")
	require.NoError(t, err)

	primary := &scriptedExtractor{err: errors.New("upstream timeout")}
	fallback := &scriptedExtractor{rec: rec}
	fe := NewFallbackExtractor(primary, fallback, circuit.New(3, time.Minute), testLogger())

	got, extractErr := fe.ExtractFromText(context.Background(), "text")
	require.NoError(t, extractErr)
	assert.Equal(t, rec, got)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackExtractor_OpenCircuitSkipsPrimary(t *testing.T) {
	primary := &scriptedExtractor{err: errors.New("upstream down")}
	fallback := &scriptedExtractor{rec: Record{Ref: "P-1"}}
	breaker := circuit.New(2, time.Hour)
	fe := NewFallbackExtractor(primary, fallback, breaker, testLogger())

	ctx := context.Background()
	_, _ = fe.ExtractFromText(ctx, "text")
	_, _ = fe.ExtractFromText(ctx, "text")
	require.True(t, breaker.IsOpen())

	_, _ = fe.ExtractFromText(ctx, "text")
	assert.Equal(t, 2, primary.calls, "open circuit bypasses the primary")
	assert.Equal(t, 3, fallback.calls)
}

func TestFallbackExtractor_ValidationErrorDoesNotTrip(t *testing.T) {
	primary := &scriptedExtractor{err: dErrors.New(dErrors.CodeRecordValidation, "age out of bounds")}
	fallback := &scriptedExtractor{}
	breaker := circuit.New(1, time.Hour)
	fe := NewFallbackExtractor(primary, fallback, breaker, testLogger())

	_, err := fe.ExtractFromText(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRecordValidation))
	assert.False(t, breaker.IsOpen())
	assert.Equal(t, 0, fallback.calls, "bad input is the caller's problem, not the primary's")
}
