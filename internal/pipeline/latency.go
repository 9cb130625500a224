package pipeline

import (
	"sort"
	"sync"
	"time"
)

// Latencies keeps the most recent pipeline duration per concept id. A
// repeat run overwrites the previous value.
type Latencies struct {
	mu     sync.Mutex
	values map[string]time.Duration
}

// NewLatencies returns an empty latency map.
func NewLatencies() *Latencies {
	return &Latencies{values: make(map[string]time.Duration)}
}

// Record sets the latest duration for conceptID.
func (l *Latencies) Record(conceptID string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[conceptID] = d
}

// Get returns the latest duration for conceptID.
func (l *Latencies) Get(conceptID string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.values[conceptID]
	return d, ok
}

// ConceptLatency is one entry of a latency listing.
type ConceptLatency struct {
	ConceptID string
	Duration  time.Duration
}

// All returns every recorded latency sorted by concept id.
func (l *Latencies) All() []ConceptLatency {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ConceptLatency, 0, len(l.values))
	for id, d := range l.values {
		out = append(out, ConceptLatency{ConceptID: id, Duration: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptID < out[j].ConceptID })
	return out
}
