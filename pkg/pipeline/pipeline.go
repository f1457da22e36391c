// Package pipeline runs partial-order alignment jobs for the CLI and the
// HTTP API.
//
// A job is a sequence set plus a configuration. The pipeline validates the
// input against the configured limits, folds the sequences into a fresh
// [poa.Engine], extracts the MSA and the consensus, and caches the outputs.
// Centralizing this keeps both entry points consistent.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Sequences:        seqs,
//	    IncludeConsensus: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range result.MSA.Rows {
//	    fmt.Println(row)
//	}
//
// Errors returned by the runner carry a code from pkg/errors; see [Classify].
//
// Graphs are never cached. Jobs with manual chains (see [Options.Chains])
// bypass the cache entirely.
package pipeline

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/montanaflynn/stats"

	"github.com/matzehuels/poagraph/pkg/align"
	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/cache"
	"github.com/matzehuels/poagraph/pkg/config"
	"github.com/matzehuels/poagraph/pkg/consensus"
	"github.com/matzehuels/poagraph/pkg/dag"
	apperr "github.com/matzehuels/poagraph/pkg/errors"
	"github.com/matzehuels/poagraph/pkg/msa"
	"github.com/matzehuels/poagraph/pkg/poa"
)

// Options describes one alignment job.
// This struct supports JSON serialization for API requests.
type Options struct {
	Sequences []string `json:"sequences"`
	// IDs names the sequences in output; optional.
	IDs []string `json:"ids,omitempty"`

	// Chains and Edges build a manual graph before any sequence is folded.
	Chains []string        `json:"chains,omitempty"`
	Edges  []poa.ChainEdge `json:"edges,omitempty"`

	IncludeConsensus bool `json:"include_consensus,omitempty"`
	RequireSequences bool `json:"require_sequences,omitempty"`
	Refresh          bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Config *config.Config `json:"-"`
	Logger *log.Logger    `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	MSA       *msa.MSA `json:"msa"`
	Consensus string   `json:"consensus"`
	// Order lists input indices in fold order. It is empty for cached results.
	Order []int `json:"order,omitempty"`
	// InputHash identifies the sequence set.
	InputHash string `json:"input_hash"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains run statistics.
type Stats struct {
	Sequences int           `json:"sequences"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Fallbacks int           `json:"band_fallbacks"`
	Cells     int           `json:"cells"`
	AlignTime time.Duration `json:"align_time"`
	Lengths   LengthSummary `json:"lengths"`
}

// LengthSummary describes the input sequence lengths.
type LengthSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	Hit bool `json:"hit"`
}

// ValidateAndSetDefaults applies the default configuration, merges the
// configuration's output switches, and checks the input against the
// configured limits. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Config == nil {
		o.Config = config.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	o.IncludeConsensus = o.IncludeConsensus || o.Config.Output.IncludeConsensus
	o.RequireSequences = o.RequireSequences || o.Config.Output.RequireSequences
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if len(o.Sequences) == 0 && len(o.Chains) == 0 && o.RequireSequences {
		return apperr.New(apperr.ErrCodeEmptyInput, "no sequences given")
	}
	if err := apperr.ValidateSequences(o.Sequences, o.Config.Limits); err != nil {
		return err
	}
	if err := apperr.ValidateSequences(o.Chains, o.Config.Limits); err != nil {
		return err
	}
	if len(o.IDs) > 0 && len(o.IDs) != len(o.Sequences) {
		return apperr.New(apperr.ErrCodeInvalidInput, "got %d ids for %d sequences", len(o.IDs), len(o.Sequences))
	}
	o.validated = true
	return nil
}

// Cacheable reports whether the job's outputs may be cached. Refresh skips
// cache reads but still stores fresh results.
func (o *Options) Cacheable() bool {
	return len(o.Chains) == 0
}

// KeyOpts returns cache key options for the job.
func (o *Options) KeyOpts() cache.ResultKeyOpts {
	p, _ := o.Config.Params()
	data, _ := json.Marshal(p)
	return cache.ResultKeyOpts{Params: cache.Hash(data), IncludeConsensus: o.IncludeConsensus}
}

// Classify attaches an error code to err according to its cause. Errors
// that already carry a code are returned unchanged.
func Classify(err error) error {
	if err == nil || apperr.GetCode(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, dag.ErrCyclicGraph):
		return apperr.Wrap(apperr.ErrCodeCyclicGraph, err, "graph would contain a cycle")
	case errors.Is(err, dag.ErrInvalidNodeReference),
		errors.Is(err, dag.ErrInvalidEdge),
		errors.Is(err, poa.ErrUnknownChain):
		return apperr.Wrap(apperr.ErrCodeInvalidNodeReference, err, "invalid node reference")
	case errors.Is(err, consensus.ErrBoundTooCostly):
		return apperr.Wrap(apperr.ErrCodeInputTooLarge, err, "consensus too costly to bound")
	case errors.Is(err, align.ErrInvalidScoring):
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "invalid scoring")
	case errors.Is(err, consensus.ErrNoPath),
		errors.Is(err, dag.ErrUnreachableNode),
		errors.Is(err, dag.ErrDeadEndNode):
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "graph has no complete path")
	case errors.Is(err, alphabet.ErrUnexpectedGap),
		errors.Is(err, alphabet.ErrUnknownSymbol),
		errors.Is(err, align.ErrGapInSequence):
		return apperr.Wrap(apperr.ErrCodeInternal, err, "symbol handling failed")
	default:
		return apperr.Wrap(apperr.ErrCodeInternal, err, "alignment failed")
	}
}

func summarize(seqs []string) LengthSummary {
	if len(seqs) == 0 {
		return LengthSummary{}
	}
	lengths := make(stats.Float64Data, len(seqs))
	for i, s := range seqs {
		lengths[i] = float64(len(s))
	}
	var out LengthSummary
	out.Min, _ = lengths.Min()
	out.Max, _ = lengths.Max()
	out.Mean, _ = lengths.Mean()
	out.Median, _ = lengths.Median()
	return out
}
