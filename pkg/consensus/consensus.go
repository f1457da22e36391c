// Package consensus extracts the majority-vote sequence of a partial-order
// alignment graph.
//
// The consensus is the best-scoring Source→Sink path. With n folded
// sequences, a node visited by w of them scores 2w-n: positive when a
// majority of the sequences passed through it, negative when a minority
// did. One forward pass over the cached topological order computes
//
//	best[v] = score(v) + max(best[u] for u in predecessors(v))
//
// with best[Source] = 0. A minority insertion lowers the score of any path
// through it, so the path takes the majority route around it, and deeper
// coverage only sharpens the vote. Among equally good predecessors the one
// with the smaller node ID wins, so repeated extraction always yields the
// same path. A graph with no folded sequences scores nodes by weight alone.
//
// Extraction never mutates the graph. Once the graph's topological order is
// cached, any number of goroutines may extract concurrently.
package consensus

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
)

// ErrNoPath is returned when the graph has nodes but none of them lies on a
// Source→Sink path.
var ErrNoPath = errors.New("no path from source to sink")

// ErrBoundTooCostly is returned when the length-bounded pass would need
// more than [Options.MaxCells] table cells.
var ErrBoundTooCostly = errors.New("length-bounded consensus exceeds its table budget")

// DefaultMaxCells caps the length-bounded pass at 64 MiB of back pointers.
const DefaultMaxCells = 1 << 24

// Options configures [Extract].
type Options struct {
	// MaxLength bounds the number of nodes in the consensus. Zero means
	// unbounded. When the best path is longer, a length-indexed pass finds
	// the best path within the bound.
	MaxLength int
	// MaxCells caps the node × length table of the bounded pass. Zero
	// means [DefaultMaxCells].
	MaxCells int
}

// Consensus is the best-scoring path through a graph.
type Consensus struct {
	// Path lists the non-sentinel nodes on the path, Source side first.
	Path []dag.NodeID
	// Weight is the summed node weight of the path.
	Weight int
	// Bounded reports that MaxLength forced the length-indexed pass.
	Bounded bool

	g *dag.Graph
}

// Len returns the number of symbols in the consensus.
func (c Consensus) Len() int { return len(c.Path) }

// Symbols yields the consensus symbols lazily, in path order.
func (c Consensus) Symbols() iter.Seq[alphabet.Symbol] {
	return func(yield func(alphabet.Symbol) bool) {
		for _, id := range c.Path {
			s, err := c.g.Symbol(id)
			if err != nil {
				return
			}
			if !yield(s) {
				return
			}
		}
	}
}

// String decodes the consensus in consensus context. A gap on the path is
// a logic error and is reported rather than rendered.
func (c Consensus) String() (string, error) {
	if c.g == nil {
		return "", nil
	}
	return alphabet.DecodeString(slices.Collect(c.Symbols()), alphabet.Consensus)
}

// Extract computes the consensus path of g. A graph without non-sentinel
// nodes yields an empty consensus.
func Extract(g *dag.Graph, opts Options) (Consensus, error) {
	if g.NodeCount() == 0 {
		return Consensus{g: g}, nil
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return Consensus{}, fmt.Errorf("consensus: %w", err)
	}
	score := scorer(g)

	path, ok := heaviest(g, order, score)
	if !ok {
		return Consensus{}, ErrNoPath
	}
	c := Consensus{Path: path, g: g}
	if opts.MaxLength > 0 && len(path) > opts.MaxLength {
		limit := opts.MaxCells
		if limit <= 0 {
			limit = DefaultMaxCells
		}
		if cells := g.Cap() * (opts.MaxLength + 1); cells > limit {
			return Consensus{}, fmt.Errorf("%w: %d nodes × %d positions", ErrBoundTooCostly, g.Cap(), opts.MaxLength+1)
		}
		if c.Path, ok = heaviestBounded(g, order, score, opts.MaxLength); !ok {
			return Consensus{}, ErrNoPath
		}
		c.Bounded = true
	}
	for _, id := range c.Path {
		w, _ := g.WeightOf(id)
		c.Weight += w
	}
	return c, nil
}

// scorer returns the vote of every node: 2w-n for a node visited by w of
// the n folded sequences, and 0 for the sentinels.
func scorer(g *dag.Graph) []int {
	n := g.SequenceCount()
	score := make([]int, g.Cap())
	for _, id := range g.NodeIDs() {
		w, _ := g.WeightOf(id)
		score[id] = 2*w - n
	}
	return score
}

const unset = math.MinInt

// heaviest runs the unconstrained forward pass.
func heaviest(g *dag.Graph, order []dag.NodeID, score []int) ([]dag.NodeID, bool) {
	best := make([]int, g.Cap())
	from := make([]dag.NodeID, g.Cap())
	for i := range best {
		best[i] = unset
		from[i] = -1
	}
	best[dag.Source] = 0

	for _, v := range order[1:] {
		preds, _ := g.Predecessors(v)
		if pick := argmax(preds, best); pick >= 0 {
			from[v] = pick
			best[v] = best[pick] + score[v]
		}
	}
	if from[dag.Sink] < 0 {
		return nil, false
	}

	var path []dag.NodeID
	for v := from[dag.Sink]; v != dag.Source; v = from[v] {
		path = append(path, v)
	}
	slices.Reverse(path)
	return path, true
}

// argmax returns the predecessor with the highest best score, the smaller
// ID on ties, or -1 if none is set.
func argmax(preds []dag.NodeID, best []int) dag.NodeID {
	var pick dag.NodeID = -1
	for _, u := range preds {
		if best[u] == unset {
			continue
		}
		if pick < 0 || best[u] > best[pick] || (best[u] == best[pick] && u < pick) {
			pick = u
		}
	}
	return pick
}

// heaviestBounded finds the best path with at most maxLen non-sentinel
// nodes. It sweeps path lengths in order and keeps the scores of the
// previous length only; the back pointers take one int32 per node and
// length.
func heaviestBounded(g *dag.Graph, order []dag.NodeID, score []int, maxLen int) ([]dag.NodeID, bool) {
	size := g.Cap()
	prev := make([]int, size)
	cur := make([]int, size)
	from := make([]int32, size*(maxLen+1))
	for i := range prev {
		prev[i] = unset
	}
	prev[dag.Source] = 0

	sinkPreds, _ := g.Predecessors(dag.Sink)
	bestScore, bestLen := unset, -1
	var bestEnd dag.NodeID = -1
	consider := func(l int, layer []int) {
		if u := argmax(sinkPreds, layer); u >= 0 && layer[u] > bestScore {
			bestScore, bestLen, bestEnd = layer[u], l, u
		}
	}
	consider(0, prev)

	for l := 1; l <= maxLen; l++ {
		live := false
		for i := range cur {
			cur[i] = unset
		}
		for _, v := range order {
			if v.IsSentinel() {
				continue
			}
			preds, _ := g.Predecessors(v)
			if u := argmax(preds, prev); u >= 0 {
				cur[v] = prev[u] + score[v]
				from[int(v)*(maxLen+1)+l] = int32(u)
				live = true
			}
		}
		if !live {
			break
		}
		consider(l, cur)
		prev, cur = cur, prev
	}
	if bestLen < 0 {
		return nil, false
	}

	path := make([]dag.NodeID, bestLen)
	v := bestEnd
	for l := bestLen; l > 0; l-- {
		path[l-1] = v
		v = dag.NodeID(from[int(v)*(maxLen+1)+l])
	}
	return path, true
}
