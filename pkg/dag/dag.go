package dag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/poagraph/pkg/alphabet"
)

var (
	// ErrInvalidNodeReference is returned when an operation references a node
	// ID that was never allocated in this graph. It is always fatal to the
	// calling operation.
	ErrInvalidNodeReference = errors.New("invalid node reference")

	// ErrInvalidEdge is returned by [Graph.AddEdge] for edges that point into
	// SOURCE or out of SINK. Sentinels only ever bound sequence paths.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrGapNode is returned by [Graph.AddNode] when asked to store a gap.
	// Gaps exist only in alignment output.
	ErrGapNode = errors.New("gap symbol cannot be a node payload")

	// ErrCyclicGraph is returned by [Graph.TopologicalOrder] and
	// [Graph.Validate] when the graph contains a directed cycle. This is an
	// invariant violation (typically a manual-construction caller declared a
	// back edge) and must never be worked around.
	ErrCyclicGraph = errors.New("graph contains a cycle")

	// ErrUnreachableNode is returned by [Graph.Validate] when a node cannot be
	// reached from SOURCE.
	ErrUnreachableNode = errors.New("node not reachable from source")

	// ErrDeadEndNode is returned by [Graph.Validate] when a node has no path
	// to SINK.
	ErrDeadEndNode = errors.New("node has no path to sink")
)

// NodeID identifies a node for the lifetime of its graph. IDs are assigned
// in insertion order and never reused, so they can be stored externally
// (for example as an alignment path).
type NodeID int

const (
	// Source is the virtual start node present in every graph.
	Source NodeID = 0
	// Sink is the virtual end node present in every graph.
	Sink NodeID = 1

	// firstNodeID is the ID handed out by the first AddNode call.
	firstNodeID NodeID = 2
)

// IsSentinel reports whether id is Source or Sink.
func (id NodeID) IsSentinel() bool { return id == Source || id == Sink }

// Node is a read-only snapshot of one graph node.
type Node struct {
	ID       NodeID
	Symbol   alphabet.Symbol // N for sentinels
	Weight   int             // distinct sequences traversing the node
	Sentinel bool
}

// Edge is a directed, weighted transition between two nodes. Weight counts
// the sequences that use the transition.
type Edge struct {
	From   NodeID
	To     NodeID
	Weight int
}

type edgeKey struct{ from, to NodeID }

// node is the arena record behind a NodeID.
type node struct {
	symbol   alphabet.Symbol
	sentinel bool
	in       []NodeID // insertion order
	out      []NodeID // insertion order
	aligned  []NodeID // other nodes sharing this node's alignment column
	seqs     []int    // indices of sequences whose path visits this node
}

// Graph is a partial-order alignment graph: a DAG of single-symbol nodes
// bounded by the Source and Sink sentinels.
//
// Nodes live in an index-addressed arena, so adjacency is expressed as
// NodeID slices and no node holds a pointer to another. The zero value is
// not usable; create graphs with [New]. A Graph is not safe for concurrent
// mutation. Once construction is finished, any number of goroutines may
// read it concurrently, provided the topological order has been computed
// (call [Graph.TopologicalOrder] once before fanning out readers).
type Graph struct {
	nodes     []node
	weights   map[edgeKey]int
	edges     []edgeKey // insertion order
	paths     [][]NodeID
	topo      topoCache
	edgeCount int
}

// New returns an empty graph holding only Source and Sink, connected by nothing.
func New() *Graph {
	g := &Graph{}
	g.init()
	return g
}

func (g *Graph) init() {
	g.nodes = []node{
		Source: {symbol: alphabet.N, sentinel: true},
		Sink:   {symbol: alphabet.N, sentinel: true},
	}
	g.weights = make(map[edgeKey]int)
	g.edges = nil
	g.paths = nil
	g.edgeCount = 0
	g.topo.invalidate()
}

// Clear discards every node, edge and path, returning the graph to the
// state produced by [New]. Node IDs restart from the first non-sentinel ID.
func (g *Graph) Clear() { g.init() }

// Reset clears the per-sequence bookkeeping (node and edge weights, recorded
// paths, the sequence counter) while keeping the learned topology. Weight
// values do not survive a reset.
func (g *Graph) Reset() {
	for i := range g.nodes {
		g.nodes[i].seqs = nil
	}
	for k := range g.weights {
		g.weights[k] = 0
	}
	g.paths = nil
}

// AddNode allocates a node carrying sym and returns its ID.
// It returns ErrGapNode if sym is a gap.
func (g *Graph) AddNode(sym alphabet.Symbol) (NodeID, error) {
	if sym == alphabet.Gap {
		return 0, ErrGapNode
	}
	if sym >= alphabet.Size {
		return 0, fmt.Errorf("%w: %d", alphabet.ErrUnknownSymbol, sym)
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{symbol: sym})
	g.topo.invalidate()
	return id, nil
}

// AddEdge adds the edge from→to with weight 1, or increments its weight if
// it already exists. Both endpoints must exist. Edges into Source, out of
// Sink, and self-loops are rejected.
func (g *Graph) AddEdge(from, to NodeID) error {
	if err := g.check(from); err != nil {
		return err
	}
	if err := g.check(to); err != nil {
		return err
	}
	if to == Source || from == Sink {
		return fmt.Errorf("%w: %d -> %d", ErrInvalidEdge, from, to)
	}
	if from == to {
		return fmt.Errorf("%w: self-loop on node %d", ErrCyclicGraph, from)
	}

	k := edgeKey{from, to}
	if w, ok := g.weights[k]; ok {
		g.weights[k] = w + 1
		return nil
	}
	g.weights[k] = 1
	g.edges = append(g.edges, k)
	g.nodes[from].out = append(g.nodes[from].out, to)
	g.nodes[to].in = append(g.nodes[to].in, from)
	g.edgeCount++
	g.topo.invalidate()
	return nil
}

// ConnectToSource adds (or reinforces) the edge Source→id.
func (g *Graph) ConnectToSource(id NodeID) error { return g.AddEdge(Source, id) }

// ConnectToSink adds (or reinforces) the edge id→Sink.
func (g *Graph) ConnectToSink(id NodeID) error { return g.AddEdge(id, Sink) }

func (g *Graph) check(id NodeID) error {
	if id < 0 || int(id) >= len(g.nodes) {
		return fmt.Errorf("%w: %d", ErrInvalidNodeReference, id)
	}
	return nil
}

// Has reports whether id was allocated in this graph.
func (g *Graph) Has(id NodeID) bool { return g.check(id) == nil }

// Node returns a snapshot of the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, error) {
	if err := g.check(id); err != nil {
		return Node{}, err
	}
	n := &g.nodes[id]
	return Node{ID: id, Symbol: n.symbol, Weight: len(n.seqs), Sentinel: n.sentinel}, nil
}

// Symbol returns the payload of id. Sentinels report N.
func (g *Graph) Symbol(id NodeID) (alphabet.Symbol, error) {
	if err := g.check(id); err != nil {
		return 0, err
	}
	return g.nodes[id].symbol, nil
}

// WeightOf returns the number of distinct sequences whose path visits id.
func (g *Graph) WeightOf(id NodeID) (int, error) {
	if err := g.check(id); err != nil {
		return 0, err
	}
	return len(g.nodes[id].seqs), nil
}

// Successors returns the targets of id's outgoing edges in insertion order.
// The returned slice is a read-only view.
func (g *Graph) Successors(id NodeID) ([]NodeID, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.nodes[id].out, nil
}

// Predecessors returns the sources of id's incoming edges in insertion order.
// The returned slice is a read-only view.
func (g *Graph) Predecessors(id NodeID) ([]NodeID, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.nodes[id].in, nil
}

// Sequences returns the indices of the sequences visiting id, in fold order.
// The returned slice is a read-only view.
func (g *Graph) Sequences(id NodeID) ([]int, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.nodes[id].seqs, nil
}

// EdgeWeight returns the weight of from→to and whether the edge exists.
func (g *Graph) EdgeWeight(from, to NodeID) (int, bool) {
	w, ok := g.weights[edgeKey{from, to}]
	return w, ok
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.weights[edgeKey{from, to}]
	return ok
}

// Edges returns every edge in insertion order, sentinel edges included.
// The slice is a copy.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, k := range g.edges {
		out[i] = Edge{From: k.from, To: k.to, Weight: g.weights[k]}
	}
	return out
}

// EdgeCount returns the number of distinct edges, sentinel edges included.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// NodeCount returns the number of non-sentinel nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) - 2 }

// Cap returns one past the largest allocated NodeID. Slices indexed by
// NodeID should have this length.
func (g *Graph) Cap() int { return len(g.nodes) }

// NodeIDs returns the IDs of all non-sentinel nodes in ascending order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, g.NodeCount())
	for id := firstNodeID; int(id) < len(g.nodes); id++ {
		ids = append(ids, id)
	}
	return ids
}

// Aligned returns the nodes sharing id's alignment column: nodes created for
// mismatching symbols at the same position. The slice is a read-only view.
func (g *Graph) Aligned(id NodeID) ([]NodeID, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	return g.nodes[id].aligned, nil
}

// AlignNodes records that a and b occupy the same alignment column. The
// relation is transitive: after the call, a, b and everything already
// aligned to either of them form one group.
func (g *Graph) AlignNodes(a, b NodeID) error {
	if err := g.check(a); err != nil {
		return err
	}
	if err := g.check(b); err != nil {
		return err
	}
	if a == b || a.IsSentinel() || b.IsSentinel() {
		return fmt.Errorf("%w: cannot align %d with %d", ErrInvalidNodeReference, a, b)
	}
	group := append([]NodeID{a, b}, g.nodes[a].aligned...)
	group = append(group, g.nodes[b].aligned...)
	slices.Sort(group)
	group = slices.Compact(group)
	for _, id := range group {
		peers := make([]NodeID, 0, len(group)-1)
		for _, other := range group {
			if other != id {
				peers = append(peers, other)
			}
		}
		g.nodes[id].aligned = peers
	}
	return nil
}

// RecordPath registers a sequence's path through the graph, increments the
// weight of every visited node, and returns the sequence index. The path
// must list non-sentinel nodes in traversal order; edges are the caller's
// responsibility. An empty path is valid and records an empty sequence.
func (g *Graph) RecordPath(path []NodeID) (int, error) {
	for _, id := range path {
		if err := g.check(id); err != nil {
			return 0, err
		}
		if id.IsSentinel() {
			return 0, fmt.Errorf("%w: sentinel %d in sequence path", ErrInvalidNodeReference, id)
		}
	}
	idx := len(g.paths)
	for _, id := range path {
		g.nodes[id].seqs = append(g.nodes[id].seqs, idx)
	}
	g.paths = append(g.paths, slices.Clone(path))
	return idx, nil
}

// Path returns the recorded path of sequence i. The slice is a read-only view.
func (g *Graph) Path(i int) ([]NodeID, error) {
	if i < 0 || i >= len(g.paths) {
		return nil, fmt.Errorf("sequence %d out of range [0, %d)", i, len(g.paths))
	}
	return g.paths[i], nil
}

// SequenceCount returns how many sequences have been folded in since the
// graph was created or last reset.
func (g *Graph) SequenceCount() int { return len(g.paths) }
