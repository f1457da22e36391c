package poa

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/poagraph/pkg/align"
	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/consensus"
	"github.com/matzehuels/poagraph/pkg/dag"
	"github.com/matzehuels/poagraph/pkg/msa"
)

// ErrUnknownChain is returned by [Engine.AddNodesEdges] when a declared
// edge names a chain index that was never added.
var ErrUnknownChain = errors.New("unknown chain index")

// ChainEdge declares that the last node of chain From links to the first
// node of chain To. Chain indices count every chain added to the engine
// since the last [Engine.Clear].
type ChainEdge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Result bundles the outputs of one [Engine.Align] call.
type Result struct {
	MSA       *msa.MSA
	Consensus consensus.Consensus
	// Order lists input indices in the order they were folded.
	Order []int
	// Folds holds per-sequence fold details, indexed by input position.
	Folds []Fold
}

// Stats accumulates counters over an engine's lifetime.
type Stats struct {
	Sequences int
	Fallbacks int // banded passes that fell back to the full matrix
	Cells     int // DP cells evaluated
	Elapsed   time.Duration
}

// Engine folds sequences into one alignment graph and extracts consensus
// and MSA results from it.
//
// An Engine owns its graph exclusively. Folding is sequential; extraction
// after folding is read-only. Independent engines share no state and may
// run on separate goroutines.
type Engine struct {
	params  Params
	aligner *align.Aligner
	codec   alphabet.Codec
	graph   *dag.Graph
	logger  *log.Logger

	chains   [][]dag.NodeID
	declared []ChainEdge
	stats    Stats
	observe  func(input, folded int, f Fold)
}

// New returns an engine with an empty graph. A nil logger discards output.
func New(params Params, logger *log.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	a, err := align.New(params.Align)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{
		params:  params,
		aligner: a,
		codec:   alphabet.Codec{CaseSensitive: params.CaseSensitive},
		graph:   dag.New(),
		logger:  logger,
	}, nil
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params { return e.params }

// Graph returns the engine's graph. Callers must not mutate it while the
// engine is folding.
func (e *Engine) Graph() *dag.Graph { return e.graph }

// Stats returns the accumulated counters.
func (e *Engine) Stats() Stats { return e.stats }

// Reset clears weights, recorded paths and the sequence counter, keeping
// the learned topology as a substrate for the next sequence set.
func (e *Engine) Reset() {
	e.graph.Reset()
	e.stats = Stats{}
}

// Clear discards the whole graph, including manual chains.
func (e *Engine) Clear() {
	e.graph.Clear()
	e.chains = nil
	e.declared = nil
	e.stats = Stats{}
}

// Encode converts s to ungapped symbols using the engine's case policy.
func (e *Engine) Encode(s string) []alphabet.Symbol { return e.codec.EncodeUngapped(s) }

// FoldSymbols aligns one encoded sequence against the graph and merges it.
func (e *Engine) FoldSymbols(seq []alphabet.Symbol) (Fold, error) {
	start := time.Now()
	f, err := fold(e.graph, e.aligner, e.params.Mismatch, seq)
	if err != nil {
		return Fold{}, err
	}
	e.stats.Sequences++
	e.stats.Cells += f.Alignment.Cells
	e.stats.Elapsed += time.Since(start)
	if f.Alignment.Fallback {
		e.stats.Fallbacks++
		e.logger.Debug("band fallback", "index", f.Index, "length", len(seq))
	}
	e.logger.Debug("folded sequence",
		"index", f.Index,
		"length", len(seq),
		"score", f.Alignment.Score,
		"new_nodes", f.NewNodes,
		"nodes", e.graph.NodeCount())
	return f, nil
}

// Fold encodes s and folds it into the graph.
func (e *Engine) Fold(s string) (Fold, error) { return e.FoldSymbols(e.Encode(s)) }

// Observe sets fn to be called by [Engine.Align] after each fold, with the
// sequence's input position and the number folded so far in this call.
// A nil fn removes the observer.
func (e *Engine) Observe(fn func(input, folded int, f Fold)) { e.observe = fn }

// Align folds seqs into the graph and extracts both the MSA (rows in input
// order) and the consensus. With progressive folding enabled, sequences
// are folded in guide order. Zero sequences yield empty outputs.
func (e *Engine) Align(seqs []string) (*Result, error) {
	if len(seqs) == 0 {
		return &Result{MSA: &msa.MSA{}}, nil
	}
	encoded := make([][]alphabet.Symbol, len(seqs))
	for i, s := range seqs {
		encoded[i] = e.Encode(s)
	}

	order := make([]int, len(seqs))
	for i := range order {
		order[i] = i
	}
	if e.params.Progressive {
		order = guideOrder(encoded, e.params.Guide)
	}

	folds := make([]Fold, len(seqs))
	for n, i := range order {
		f, err := e.FoldSymbols(encoded[i])
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %w", i, err)
		}
		folds[i] = f
		if e.observe != nil {
			e.observe(i, n+1, f)
		}
	}

	sel := make([]int, len(seqs))
	for i, f := range folds {
		sel[i] = f.Index
	}
	m, err := msa.Extract(e.graph, msa.Options{Sequences: sel})
	if err != nil {
		return nil, err
	}
	cons, err := e.Consensus()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("aligned sequences",
		"sequences", len(seqs),
		"columns", m.Length,
		"consensus", cons.Len(),
		"nodes", e.graph.NodeCount())
	return &Result{MSA: m, Consensus: cons, Order: order, Folds: folds}, nil
}

// AlignSeqs folds seqs and returns their MSA.
func (e *Engine) AlignSeqs(seqs []string) (*msa.MSA, error) {
	res, err := e.Align(seqs)
	if err != nil {
		return nil, err
	}
	return res.MSA, nil
}

// ConsensusFromSeqs folds seqs and returns the consensus.
func (e *Engine) ConsensusFromSeqs(seqs []string) (consensus.Consensus, error) {
	res, err := e.Align(seqs)
	if err != nil {
		return consensus.Consensus{}, err
	}
	return res.Consensus, nil
}

// MSA extracts the alignment of every sequence recorded in the graph.
func (e *Engine) MSA() (*msa.MSA, error) {
	return msa.Extract(e.graph, msa.Options{})
}

// Consensus extracts the majority-vote path of the current graph. Its
// length is bounded by the longest recorded sequence; a graph with no
// recorded sequences yields the unbounded best path.
func (e *Engine) Consensus() (consensus.Consensus, error) {
	maxLen := 0
	for i := range e.graph.SequenceCount() {
		p, _ := e.graph.Path(i)
		maxLen = max(maxLen, len(p))
	}
	return consensus.Extract(e.graph, consensus.Options{MaxLength: maxLen})
}

// AddNodesFromSeq appends s to the graph as a disjoint chain: one node per
// symbol, edges only between consecutive nodes. No alignment happens and
// nothing is linked to Source or Sink.
func (e *Engine) AddNodesFromSeq(s string) ([]dag.NodeID, error) {
	syms := e.Encode(s)
	ids := make([]dag.NodeID, 0, len(syms))
	for _, sym := range syms {
		id, err := e.graph.AddNode(sym)
		if err != nil {
			return nil, err
		}
		if n := len(ids); n > 0 {
			if err := e.graph.AddEdge(ids[n-1], id); err != nil {
				return nil, err
			}
		}
		ids = append(ids, id)
	}
	e.chains = append(e.chains, ids)
	return slices.Clone(ids), nil
}

// AddEdge declares an edge between two existing nodes, or reinforces it.
func (e *Engine) AddEdge(from, to dag.NodeID) error {
	return e.graph.AddEdge(from, to)
}

// AddNodesEdges adds each of seqs as a chain, links chains as declared by
// edges, then connects boundary nodes to Source and Sink according to the
// engine's BoundaryPolicy. It fails with ErrUnknownChain or a dag error
// if an edge is invalid or would create a cycle.
func (e *Engine) AddNodesEdges(seqs []string, edges []ChainEdge) error {
	for _, s := range seqs {
		if _, err := e.AddNodesFromSeq(s); err != nil {
			return err
		}
	}
	for _, ce := range edges {
		from, err := e.chainEnd(ce.From, true)
		if err != nil {
			return err
		}
		to, err := e.chainEnd(ce.To, false)
		if err != nil {
			return err
		}
		if err := e.graph.AddEdge(from, to); err != nil {
			return fmt.Errorf("chain edge %d->%d: %w", ce.From, ce.To, err)
		}
		e.declared = append(e.declared, ce)
	}
	if err := e.linkBoundaries(); err != nil {
		return err
	}
	if _, err := e.graph.TopologicalOrder(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) chainEnd(idx int, last bool) (dag.NodeID, error) {
	if idx < 0 || idx >= len(e.chains) {
		return 0, fmt.Errorf("%w: %d (have %d)", ErrUnknownChain, idx, len(e.chains))
	}
	c := e.chains[idx]
	if len(c) == 0 {
		return 0, fmt.Errorf("%w: chain %d is empty", ErrUnknownChain, idx)
	}
	if last {
		return c[len(c)-1], nil
	}
	return c[0], nil
}

func (e *Engine) linkBoundaries() error {
	switch e.params.Boundary {
	case BoundaryFirstLast:
		first, last := e.firstNonEmpty(), e.lastNonEmpty()
		if first == nil {
			return nil
		}
		if !e.graph.HasEdge(dag.Source, first[0]) {
			if err := e.graph.ConnectToSource(first[0]); err != nil {
				return err
			}
		}
		if end := last[len(last)-1]; !e.graph.HasEdge(end, dag.Sink) {
			return e.graph.ConnectToSink(end)
		}
		return nil
	default:
		for _, id := range e.graph.Roots() {
			if err := e.graph.ConnectToSource(id); err != nil {
				return err
			}
		}
		for _, id := range e.graph.Leaves() {
			if err := e.graph.ConnectToSink(id); err != nil {
				return err
			}
		}
		return nil
	}
}

func (e *Engine) firstNonEmpty() []dag.NodeID {
	for _, c := range e.chains {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

func (e *Engine) lastNonEmpty() []dag.NodeID {
	for i := len(e.chains) - 1; i >= 0; i-- {
		if len(e.chains[i]) > 0 {
			return e.chains[i]
		}
	}
	return nil
}

// Chains returns the node IDs of every manually added chain.
func (e *Engine) Chains() [][]dag.NodeID {
	out := make([][]dag.NodeID, len(e.chains))
	for i, c := range e.chains {
		out[i] = slices.Clone(c)
	}
	return out
}

// DeclaredEdges returns the chain edges accepted by AddNodesEdges.
func (e *Engine) DeclaredEdges() []ChainEdge { return slices.Clone(e.declared) }
