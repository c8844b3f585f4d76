package pipeline

import "sync/atomic"

// Stats is a snapshot of pipeline counters.
type Stats struct {
	Total     int64
	Completed int64
	Degraded  int64
	Failed    int64
	CacheHits int64
}

// counters holds the live atomic counters behind Stats.
type counters struct {
	total     atomic.Int64
	completed atomic.Int64
	degraded  atomic.Int64
	failed    atomic.Int64
	cacheHits atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Total:     c.total.Load(),
		Completed: c.completed.Load(),
		Degraded:  c.degraded.Load(),
		Failed:    c.failed.Load(),
		CacheHits: c.cacheHits.Load(),
	}
}
