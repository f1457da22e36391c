// Package observability carries alignment, cache and HTTP events to
// whoever wants them.
//
// Libraries emit events through the accessors [Pipeline], [Cache] and
// [HTTP]. Nothing is recorded until main registers a consumer:
//
//	counters := &observability.Counters{}
//	observability.Register(observability.Multi(counters, observability.LogHooks{Logger: logger}))
//
// [Register] accepts any value and installs it for every hook interface it
// implements, so one type can observe all three event streams. The engine
// packages never import this package.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from alignment runs.
type PipelineHooks interface {
	// OnAlignStart and OnAlignComplete bracket one run over a sequence set.
	OnAlignStart(ctx context.Context, sequences int)
	OnAlignComplete(ctx context.Context, sequences, columns int, duration time.Duration, err error)

	// OnFold reports one sequence merged into the graph.
	OnFold(ctx context.Context, index, length, newNodes int, fallback bool)

	// OnExtract reports a finished extraction; kind is "msa", "consensus" or "dot".
	OnExtract(ctx context.Context, kind string, length int)
}

// CacheHooks receives result cache events. key is the full cache key.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, key string)
	OnCacheMiss(ctx context.Context, key string)
	OnCacheSet(ctx context.Context, key string, size int)
}

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path, requestID string)
	OnResponse(ctx context.Context, method, path string, status int, duration time.Duration)
	OnError(ctx context.Context, method, path string, err error)
}

// Nop implements every hook interface and does nothing.
type Nop struct{}

func (Nop) OnAlignStart(context.Context, int)                               {}
func (Nop) OnAlignComplete(context.Context, int, int, time.Duration, error) {}
func (Nop) OnFold(context.Context, int, int, int, bool)                     {}
func (Nop) OnExtract(context.Context, string, int)                          {}
func (Nop) OnCacheHit(context.Context, string)                              {}
func (Nop) OnCacheMiss(context.Context, string)                             {}
func (Nop) OnCacheSet(context.Context, string, int)                         {}
func (Nop) OnRequest(context.Context, string, string, string)               {}
func (Nop) OnResponse(context.Context, string, string, int, time.Duration)  {}
func (Nop) OnError(context.Context, string, string, error)                  {}

var (
	mu       sync.RWMutex
	pipeline PipelineHooks = Nop{}
	cache    CacheHooks    = Nop{}
	httpHook HTTPHooks     = Nop{}
)

// Register installs h for each hook interface it implements and reports
// whether it implemented any. A nil h is ignored.
func Register(h any) bool {
	if h == nil {
		return false
	}
	mu.Lock()
	defer mu.Unlock()
	ok := false
	if p, is := h.(PipelineHooks); is {
		pipeline, ok = p, true
	}
	if c, is := h.(CacheHooks); is {
		cache, ok = c, true
	}
	if x, is := h.(HTTPHooks); is {
		httpHook, ok = x, true
	}
	return ok
}

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	pipeline, cache, httpHook = Nop{}, Nop{}, Nop{}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cache
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return httpHook
}
