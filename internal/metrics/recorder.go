package metrics

import (
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
)

// Recorder receives pipeline events. The pipeline never blocks on metrics:
// implementations must be cheap and non-failing.
type Recorder interface {
	RecordValidation(status domain.Status, score int)
	RecordSecuritySignal(code domain.DiagnosticCode)
	RecordStageDuration(stage string, d time.Duration)
}

// Snapshot is the aggregated view of one collection window.
type Snapshot struct {
	Validations     map[domain.Status]int64
	ScoreSum        int64
	ScoreCount      int64
	SecuritySignals map[domain.DiagnosticCode]int64
	StageDurations  map[string]time.Duration
	StageCounts     map[string]int64
}

// Collector is an in-memory Recorder. The aggregator drains it periodically.
type Collector struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewCollector() *Collector {
	c := &Collector{}
	c.snap = emptySnapshot()
	return c
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Validations:     make(map[domain.Status]int64),
		SecuritySignals: make(map[domain.DiagnosticCode]int64),
		StageDurations:  make(map[string]time.Duration),
		StageCounts:     make(map[string]int64),
	}
}

func (c *Collector) RecordValidation(status domain.Status, score int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Validations[status]++
	c.snap.ScoreSum += int64(score)
	c.snap.ScoreCount++
}

func (c *Collector) RecordSecuritySignal(code domain.DiagnosticCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.SecuritySignals[code]++
}

func (c *Collector) RecordStageDuration(stage string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.StageDurations[stage] += d
	c.snap.StageCounts[stage]++
}

// Drain returns the accumulated snapshot and resets the collector.
func (c *Collector) Drain() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.snap
	c.snap = emptySnapshot()
	return snap
}

var _ Recorder = (*Collector)(nil)
