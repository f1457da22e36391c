package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// Counters tallies events. The zero value is ready to use and safe for
// concurrent use.
type Counters struct {
	runs, failures, folds, fallbacks atomic.Int64
	hits, misses, sets               atomic.Int64
	requests, errors                 atomic.Int64
	alignNanos                       atomic.Int64
	status                           [6]atomic.Int64 // by status class, 1xx..5xx
}

// Snapshot is a point-in-time copy of [Counters].
type Snapshot struct {
	Runs        int64            `json:"runs"`
	Failures    int64            `json:"failures"`
	Folds       int64            `json:"folds"`
	Fallbacks   int64            `json:"fallbacks"`
	AlignTime   time.Duration    `json:"align_time_ns"`
	CacheHits   int64            `json:"cache_hits"`
	CacheMisses int64            `json:"cache_misses"`
	CacheSets   int64            `json:"cache_sets"`
	Requests    int64            `json:"requests"`
	Errors      int64            `json:"errors"`
	Responses   map[string]int64 `json:"responses,omitempty"`
}

// Snapshot returns the current counts.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Runs:        c.runs.Load(),
		Failures:    c.failures.Load(),
		Folds:       c.folds.Load(),
		Fallbacks:   c.fallbacks.Load(),
		AlignTime:   time.Duration(c.alignNanos.Load()),
		CacheHits:   c.hits.Load(),
		CacheMisses: c.misses.Load(),
		CacheSets:   c.sets.Load(),
		Requests:    c.requests.Load(),
		Errors:      c.errors.Load(),
	}
	for class := 1; class < len(c.status); class++ {
		if n := c.status[class].Load(); n > 0 {
			if s.Responses == nil {
				s.Responses = make(map[string]int64)
			}
			s.Responses[string(rune('0'+class))+"xx"] = n
		}
	}
	return s
}

func (c *Counters) OnAlignStart(context.Context, int) {}

func (c *Counters) OnAlignComplete(_ context.Context, _, _ int, d time.Duration, err error) {
	c.runs.Add(1)
	if err != nil {
		c.failures.Add(1)
	}
	c.alignNanos.Add(int64(d))
}

func (c *Counters) OnFold(_ context.Context, _, _, _ int, fallback bool) {
	c.folds.Add(1)
	if fallback {
		c.fallbacks.Add(1)
	}
}

func (c *Counters) OnExtract(context.Context, string, int) {}

func (c *Counters) OnCacheHit(context.Context, string)      { c.hits.Add(1) }
func (c *Counters) OnCacheMiss(context.Context, string)     { c.misses.Add(1) }
func (c *Counters) OnCacheSet(context.Context, string, int) { c.sets.Add(1) }

func (c *Counters) OnRequest(context.Context, string, string, string) { c.requests.Add(1) }

func (c *Counters) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	if class := status / 100; class > 0 && class < len(c.status) {
		c.status[class].Add(1)
	}
}

func (c *Counters) OnError(context.Context, string, string, error) { c.errors.Add(1) }
