package extract

import (
	"sort"
	"sync"
	"time"
)

// Stats keeps generation call latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	at     []time.Time
	ms     []int64
	maxAge time.Duration
}

// StatsSnapshot is a point-in-time aggregate of recorded latencies.
type StatsSnapshot struct {
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs int64   `json:"max_ms"`
	P95Ms int64   `json:"p95_ms"`
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(time.Now())
	s.at = append(s.at, time.Now())
	s.ms = append(s.ms, durationMs)
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(time.Now())

	n := len(s.ms)
	if n == 0 {
		return StatsSnapshot{}
	}

	sorted := make([]int64, n)
	copy(sorted, s.ms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return StatsSnapshot{
		Count: n,
		AvgMs: float64(sum) / float64(n),
		MaxMs: sorted[n-1],
		P95Ms: sorted[(n-1)*95/100],
	}
}

func (s *Stats) prune(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	keep := 0
	for i, t := range s.at {
		if !t.Before(cutoff) {
			s.at[keep] = s.at[i]
			s.ms[keep] = s.ms[i]
			keep++
		}
	}
	s.at = s.at[:keep]
	s.ms = s.ms[:keep]
}
