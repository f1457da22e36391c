package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to Logger at debug level. Failed runs and
// request errors are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnAlignStart(_ context.Context, sequences int) {
	h.Logger.Debug("align start", "sequences", sequences)
}

func (h LogHooks) OnAlignComplete(_ context.Context, sequences, columns int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("align failed", "sequences", sequences, "elapsed", d, "error", err)
		return
	}
	h.Logger.Debug("align done", "sequences", sequences, "columns", columns, "elapsed", d)
}

func (h LogHooks) OnFold(_ context.Context, index, length, newNodes int, fallback bool) {
	h.Logger.Debug("folded", "index", index, "length", length, "new_nodes", newNodes, "fallback", fallback)
}

func (h LogHooks) OnExtract(_ context.Context, kind string, length int) {
	h.Logger.Debug("extracted", "kind", kind, "length", length)
}

func (h LogHooks) OnCacheHit(_ context.Context, key string) {
	h.Logger.Debug("cache hit", "key", key)
}

func (h LogHooks) OnCacheMiss(_ context.Context, key string) {
	h.Logger.Debug("cache miss", "key", key)
}

func (h LogHooks) OnCacheSet(_ context.Context, key string, size int) {
	h.Logger.Debug("cache set", "key", key, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, path, id string) {
	h.Logger.Debug("request", "method", method, "path", path, "id", id)
}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "elapsed", d)
}

func (h LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.Logger.Warn("request error", "method", method, "path", path, "error", err)
}
