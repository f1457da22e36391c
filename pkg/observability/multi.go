package observability

import (
	"context"
	"time"
)

// Multi fans every event out to each of hs that implements the matching
// interface. Values implementing none are dropped.
func Multi(hs ...any) *Fanout {
	f := &Fanout{}
	for _, h := range hs {
		if p, ok := h.(PipelineHooks); ok {
			f.pipeline = append(f.pipeline, p)
		}
		if c, ok := h.(CacheHooks); ok {
			f.cache = append(f.cache, c)
		}
		if x, ok := h.(HTTPHooks); ok {
			f.http = append(f.http, x)
		}
	}
	return f
}

// Fanout is returned by [Multi].
type Fanout struct {
	pipeline []PipelineHooks
	cache    []CacheHooks
	http     []HTTPHooks
}

func (f *Fanout) OnAlignStart(ctx context.Context, sequences int) {
	for _, h := range f.pipeline {
		h.OnAlignStart(ctx, sequences)
	}
}

func (f *Fanout) OnAlignComplete(ctx context.Context, sequences, columns int, d time.Duration, err error) {
	for _, h := range f.pipeline {
		h.OnAlignComplete(ctx, sequences, columns, d, err)
	}
}

func (f *Fanout) OnFold(ctx context.Context, index, length, newNodes int, fallback bool) {
	for _, h := range f.pipeline {
		h.OnFold(ctx, index, length, newNodes, fallback)
	}
}

func (f *Fanout) OnExtract(ctx context.Context, kind string, length int) {
	for _, h := range f.pipeline {
		h.OnExtract(ctx, kind, length)
	}
}

func (f *Fanout) OnCacheHit(ctx context.Context, key string) {
	for _, h := range f.cache {
		h.OnCacheHit(ctx, key)
	}
}

func (f *Fanout) OnCacheMiss(ctx context.Context, key string) {
	for _, h := range f.cache {
		h.OnCacheMiss(ctx, key)
	}
}

func (f *Fanout) OnCacheSet(ctx context.Context, key string, size int) {
	for _, h := range f.cache {
		h.OnCacheSet(ctx, key, size)
	}
}

func (f *Fanout) OnRequest(ctx context.Context, method, path, id string) {
	for _, h := range f.http {
		h.OnRequest(ctx, method, path, id)
	}
}

func (f *Fanout) OnResponse(ctx context.Context, method, path string, status int, d time.Duration) {
	for _, h := range f.http {
		h.OnResponse(ctx, method, path, status, d)
	}
}

func (f *Fanout) OnError(ctx context.Context, method, path string, err error) {
	for _, h := range f.http {
		h.OnError(ctx, method, path, err)
	}
}
