package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/poagraph/pkg/cache"
	"github.com/matzehuels/poagraph/pkg/consensus"
	"github.com/matzehuels/poagraph/pkg/msa"
	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/poa"
)

// DefaultBatchConcurrency bounds the number of jobs [Runner.RunBatch] runs at
// once when no limit is given.
const DefaultBatchConcurrency = 4

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every job gets
// its own engine, so multiple goroutines can safely share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute aligns the job's sequences and extracts the MSA, plus the
// consensus row when requested. Results are served from the cache when
// possible.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	inputHash := cache.InputHash(opts.Sequences)
	key := r.Keyer.MSAKey(inputHash, opts.KeyOpts())
	if res, ok := r.lookup(ctx, key, opts); ok {
		return res, nil
	}

	res, err := r.run(ctx, opts)
	if err != nil {
		return nil, err
	}
	res.InputHash = inputHash
	r.store(ctx, key, res, cache.TTLMSA, opts)
	return res, nil
}

// Consensus aligns the job's sequences and returns only the consensus.
// The MSA is computed but not returned or cached.
func (r *Runner) Consensus(ctx context.Context, opts Options) (string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", false, fmt.Errorf("invalid options: %w", err)
	}
	opts.IncludeConsensus = true

	key := r.Keyer.ConsensusKey(cache.InputHash(opts.Sequences), opts.KeyOpts())
	if opts.Cacheable() && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, key)
			return string(data), true, nil
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	res, err := r.run(ctx, opts)
	if err != nil {
		return "", false, err
	}
	if opts.Cacheable() {
		if err := r.Cache.Set(ctx, key, []byte(res.Consensus), cache.TTLConsensus); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, key, len(res.Consensus))
		}
	}
	return res.Consensus, false, nil
}

// BuildEngine folds the job into a fresh engine and returns it alongside the
// alignment result. Used by callers that need the graph itself, such as the
// DOT renderer. Nothing is cached.
func (r *Runner) BuildEngine(ctx context.Context, opts Options) (*poa.Engine, *poa.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.fold(ctx, opts)
}

// RunBatch executes jobs concurrently, at most limit at a time (a limit of
// zero or less means [DefaultBatchConcurrency]). Results are returned in job
// order; the first failure cancels the remaining jobs.
func (r *Runner) RunBatch(ctx context.Context, jobs []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultBatchConcurrency
	}
	results := make([]*Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := r.Execute(ctx, job)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	observability.Pipeline().OnAlignStart(ctx, len(opts.Sequences))

	e, res, err := r.fold(ctx, opts)
	if err != nil {
		observability.Pipeline().OnAlignComplete(ctx, len(opts.Sequences), 0, time.Since(start), err)
		return nil, err
	}

	m := res.MSA
	cons, err := res.Consensus.String()
	if err != nil {
		return nil, Classify(err)
	}
	if opts.IncludeConsensus && res.Consensus.Len() > 0 && len(opts.Sequences) > 0 {
		sel := make([]int, len(res.Folds))
		for i, f := range res.Folds {
			sel[i] = f.Index
		}
		m, err = msa.Extract(e.Graph(), msa.Options{Sequences: sel, Extra: res.Consensus.Path})
		if err != nil {
			return nil, Classify(err)
		}
	}
	observability.Pipeline().OnExtract(ctx, "msa", m.Length)
	observability.Pipeline().OnExtract(ctx, "consensus", res.Consensus.Len())

	st := e.Stats()
	out := &Result{
		MSA:       m,
		Consensus: cons,
		Order:     res.Order,
		Stats: Stats{
			Sequences: len(opts.Sequences),
			Nodes:     e.Graph().NodeCount(),
			Edges:     e.Graph().EdgeCount(),
			Fallbacks: st.Fallbacks,
			Cells:     st.Cells,
			AlignTime: time.Since(start),
			Lengths:   summarize(opts.Sequences),
		},
	}
	observability.Pipeline().OnAlignComplete(ctx, len(opts.Sequences), m.Length, out.Stats.AlignTime, nil)

	opts.Logger.Info("aligned sequences",
		"sequences", out.Stats.Sequences,
		"columns", m.Length,
		"nodes", out.Stats.Nodes,
		"fallbacks", out.Stats.Fallbacks,
		"duration", out.Stats.AlignTime)
	return out, nil
}

// fold builds an engine from the job and aligns its sequences.
func (r *Runner) fold(ctx context.Context, opts Options) (*poa.Engine, *poa.Result, error) {
	params, err := opts.Config.Params()
	if err != nil {
		return nil, nil, err
	}
	e, err := poa.New(params, opts.Logger)
	if err != nil {
		return nil, nil, Classify(err)
	}
	if len(opts.Chains) > 0 {
		if err := e.AddNodesEdges(opts.Chains, opts.Edges); err != nil {
			return nil, nil, Classify(err)
		}
		opts.Logger.Debug("built manual graph",
			"chains", len(opts.Chains),
			"edges", len(opts.Edges),
			"nodes", e.Graph().NodeCount())
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	e.Observe(func(i, _ int, f poa.Fold) {
		observability.Pipeline().OnFold(ctx, i, len(opts.Sequences[i]), f.NewNodes, f.Alignment.Fallback)
	})
	res, err := e.Align(opts.Sequences)
	if err != nil {
		return nil, nil, Classify(err)
	}
	if len(opts.Sequences) == 0 && len(opts.Chains) > 0 {
		// A manual graph without folded sequences still has a consensus path.
		cons, err := e.Consensus()
		if err != nil && !errors.Is(err, consensus.ErrNoPath) {
			return nil, nil, Classify(err)
		}
		res.Consensus = cons
	}
	return e, res, nil
}

func (r *Runner) lookup(ctx context.Context, key string, opts Options) (*Result, bool) {
	if !opts.Cacheable() || opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res.MSA == nil {
		// Stale or foreign payload; recompute.
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	res.CacheInfo.Hit = true
	opts.Logger.Debug("served from cache", "key", key)
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result, ttl time.Duration, opts Options) {
	if !opts.Cacheable() {
		return
	}
	cached := *res
	cached.Order = nil
	data, err := json.Marshal(&cached)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
