package matching

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStats_EmptySnapshot(t *testing.T) {
	snap := NewStats().Snapshot()

	assert.Equal(t, int64(0), snap.TotalEvaluations)
	assert.Equal(t, int64(0), snap.EligibleMatches)
	assert.Equal(t, 0.0, snap.AverageConfidence, "average is 0 before any evaluation")
}

func TestStats_Observe(t *testing.T) {
	stats := NewStats()
	stats.Observe(Decision{Eligible: true, Confidence: 1.0})
	stats.Observe(Decision{Eligible: false, Confidence: 0.5})

	snap := stats.Snapshot()
	assert.Equal(t, int64(2), snap.TotalEvaluations)
	assert.Equal(t, int64(1), snap.EligibleMatches)
	assert.InDelta(t, 1.5, snap.ConfidenceSum, 1e-9)
	assert.InDelta(t, 0.75, snap.AverageConfidence, 1e-9)
}

func TestStats_Reset(t *testing.T) {
	stats := NewStats()
	stats.Observe(Decision{Eligible: true, Confidence: 1.0})
	stats.Reset()

	snap := stats.Snapshot()
	assert.Equal(t, int64(0), snap.TotalEvaluations)
	assert.Equal(t, int64(0), snap.EligibleMatches)
	assert.Equal(t, 0.0, snap.ConfidenceSum)
}

func TestStats_ConcurrentObserve(t *testing.T) {
	stats := NewStats()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				stats.Observe(Decision{Eligible: true, Confidence: 0.5})
			}
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.Equal(t, int64(5000), snap.TotalEvaluations)
	assert.Equal(t, int64(5000), snap.EligibleMatches)
	assert.InDelta(t, 2500, snap.ConfidenceSum, 1e-6)
}
