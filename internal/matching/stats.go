package matching

import "sync"

// Stats is the running aggregate across all evaluations performed by one
// orchestrator. It has an explicit lifecycle: created with the orchestrator,
// cleared only through Reset, never implicitly. Updates are serialized under
// the mutex so concurrent patient runs stay consistent.
type Stats struct {
	mu               sync.Mutex
	totalEvaluations int64
	eligibleMatches  int64
	confidenceSum    float64
}

// StatsSnapshot is an immutable copy of the aggregate at one point in time.
type StatsSnapshot struct {
	TotalEvaluations  int64   `json:"total_evaluations"`
	EligibleMatches   int64   `json:"eligible_matches"`
	ConfidenceSum     float64 `json:"confidence_sum"`
	AverageConfidence float64 `json:"average_confidence"`
}

func NewStats() *Stats {
	return &Stats{}
}

// Observe records one completed evaluation.
func (s *Stats) Observe(d Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalEvaluations++
	if d.Eligible {
		s.eligibleMatches++
	}
	s.confidenceSum += d.Confidence
}

// Snapshot returns a copy of the aggregate. Average is 0 when nothing has
// been evaluated yet.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatsSnapshot{
		TotalEvaluations: s.totalEvaluations,
		EligibleMatches:  s.eligibleMatches,
		ConfidenceSum:    s.confidenceSum,
	}
	if s.totalEvaluations > 0 {
		snap.AverageConfidence = s.confidenceSum / float64(s.totalEvaluations)
	}
	return snap
}

// Reset clears the aggregate. This is the only way the aggregate shrinks.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalEvaluations = 0
	s.eligibleMatches = 0
	s.confidenceSum = 0
}
