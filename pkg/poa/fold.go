package poa

import (
	"fmt"
	"math"

	"github.com/matzehuels/poagraph/pkg/align"
	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
)

// Fold is the outcome of threading one sequence into the graph.
type Fold struct {
	// Index is the sequence index assigned by the graph.
	Index int
	// Path lists the nodes the sequence visits, in order.
	Path []dag.NodeID
	// Alignment is the aligner's result against the pre-fold graph.
	Alignment align.Result
	// NewNodes counts nodes allocated for this sequence.
	NewNodes int
	// Reused counts mismatches resolved onto an existing aligned node.
	Reused int
}

// step is one planned path element. An existing node has id set; a new
// node has id == newNode and carries sym, plus the node it should be
// aligned to (or align.NoNode for insertions).
type step struct {
	id      dag.NodeID
	sym     alphabet.Symbol
	alignTo dag.NodeID
}

const newNode dag.NodeID = -2

// fold aligns seq against g and merges it in.
//
// Existing nodes on the planned path are kept in strictly increasing
// topological rank of the pre-fold graph. New nodes only ever sit between
// two planned neighbours, so the pre-fold order extended with them is a
// valid order of the result and the graph stays acyclic.
func fold(g *dag.Graph, a *align.Aligner, policy MismatchPolicy, seq []alphabet.Symbol) (Fold, error) {
	res, err := a.Align(g, seq)
	if err != nil {
		return Fold{}, err
	}
	ranks, err := g.Ranks()
	if err != nil {
		return Fold{}, fmt.Errorf("fold: %w", err)
	}

	plan, reused, err := planPath(g, ranks, res.Ops, seq, policy)
	if err != nil {
		return Fold{}, err
	}

	path := make([]dag.NodeID, 0, len(plan))
	created := 0
	prev := dag.Source
	for _, st := range plan {
		id := st.id
		if id == newNode {
			if id, err = g.AddNode(st.sym); err != nil {
				return Fold{}, fmt.Errorf("fold: %w", err)
			}
			created++
			if st.alignTo != align.NoNode {
				if err := g.AlignNodes(st.alignTo, id); err != nil {
					return Fold{}, fmt.Errorf("fold: %w", err)
				}
			}
		}
		if err := g.AddEdge(prev, id); err != nil {
			return Fold{}, fmt.Errorf("fold: %w", err)
		}
		path = append(path, id)
		prev = id
	}
	if len(path) > 0 {
		if err := g.ConnectToSink(prev); err != nil {
			return Fold{}, fmt.Errorf("fold: %w", err)
		}
	}

	idx, err := g.RecordPath(path)
	if err != nil {
		return Fold{}, fmt.Errorf("fold: %w", err)
	}
	return Fold{Index: idx, Path: path, Alignment: res, NewNodes: created, Reused: reused}, nil
}

// planPath turns alignment ops into path steps without touching the graph.
func planPath(g *dag.Graph, ranks []int, ops []align.Op, seq []alphabet.Symbol, policy MismatchPolicy) ([]step, int, error) {
	// upper[i] is the rank of the next graph node visited after op i.
	upper := make([]int, len(ops))
	next := math.MaxInt
	for i := len(ops) - 1; i >= 0; i-- {
		upper[i] = next
		if k := ops[i].Kind; k == align.OpMatch || k == align.OpMismatch {
			next = ranks[ops[i].Node]
		}
	}

	plan := make([]step, 0, len(ops))
	lower := ranks[dag.Source]
	reused := 0
	for i, op := range ops {
		switch op.Kind {
		case align.OpDeletion:
			continue
		case align.OpInsertion:
			plan = append(plan, step{id: newNode, sym: seq[op.SeqPos], alignTo: align.NoNode})
		case align.OpMatch:
			plan = append(plan, step{id: op.Node})
			lower = ranks[op.Node]
		case align.OpMismatch:
			sym := seq[op.SeqPos]
			if policy == MismatchAligned {
				if peer, ok := alignedPeer(g, ranks, op.Node, sym, lower, upper[i]); ok {
					plan = append(plan, step{id: peer})
					lower = ranks[peer]
					reused++
					continue
				}
			}
			plan = append(plan, step{id: newNode, sym: sym, alignTo: op.Node})
			// The mismatched node bounds the next existing node from below
			// just as a match would.
			lower = ranks[op.Node]
		default:
			return nil, 0, fmt.Errorf("fold: unknown op kind %d", op.Kind)
		}
	}
	return plan, reused, nil
}

// alignedPeer returns the smallest-ID node aligned to v that carries sym and
// whose rank lies strictly between lower and upper.
func alignedPeer(g *dag.Graph, ranks []int, v dag.NodeID, sym alphabet.Symbol, lower, upper int) (dag.NodeID, bool) {
	peers, err := g.Aligned(v)
	if err != nil {
		return 0, false
	}
	var best dag.NodeID = -1
	for _, p := range peers {
		if int(p) >= len(ranks) {
			continue
		}
		if s, _ := g.Symbol(p); s != sym {
			continue
		}
		if r := ranks[p]; r <= lower || r >= upper {
			continue
		}
		if best < 0 || p < best {
			best = p
		}
	}
	return best, best >= 0
}
