package dag

import (
	"container/heap"
	"fmt"
)

// topoCache holds the last computed topological order. It is invalidated by
// any mutation that can change the order and rebuilt on the next read.
type topoCache struct {
	valid bool
	order []NodeID
	rank  []int
}

func (c *topoCache) invalidate() {
	c.valid = false
	c.order = nil
	c.rank = nil
}

// idHeap is a min-heap of node IDs, used to release ready nodes in
// ascending-ID order.
type idHeap []NodeID

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(NodeID)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns every node, sentinels included, in an order where
// each edge points forward. Source is always first and Sink always last.
// Among nodes that are ready at the same time the smaller ID comes first, so
// the order is fully determined by the graph.
//
// The result is cached until the next AddNode or new AddEdge. The returned
// slice is shared with the cache and must not be modified.
//
// It returns ErrCyclicGraph if the graph contains a cycle.
func (g *Graph) TopologicalOrder() ([]NodeID, error) {
	if g.topo.valid {
		return g.topo.order, nil
	}

	n := len(g.nodes)
	indeg := make([]int, n)
	for id := range g.nodes {
		indeg[id] = len(g.nodes[id].in)
	}

	ready := &idHeap{}
	for id := range g.nodes {
		if indeg[id] == 0 && NodeID(id) != Sink {
			heap.Push(ready, NodeID(id))
		}
	}

	order := make([]NodeID, 0, n)
	for ready.Len() > 0 {
		id := heap.Pop(ready).(NodeID)
		order = append(order, id)
		for _, next := range g.nodes[id].out {
			indeg[next]--
			if indeg[next] == 0 && next != Sink {
				heap.Push(ready, next)
			}
		}
	}
	if indeg[Sink] == 0 {
		order = append(order, Sink)
	}

	if len(order) != n {
		return nil, fmt.Errorf("%w: %d of %d nodes could not be ordered", ErrCyclicGraph, n-len(order), n)
	}

	rank := make([]int, n)
	for i, id := range order {
		rank[id] = i
	}
	g.topo = topoCache{valid: true, order: order, rank: rank}
	return order, nil
}

// Ranks returns, for every node ID, its position in [Graph.TopologicalOrder].
// The returned slice is shared with the cache and must not be modified.
func (g *Graph) Ranks() ([]int, error) {
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, err
	}
	return g.topo.rank, nil
}

// Validate checks the structural invariants of a finished graph: it must be
// acyclic, every node must be reachable from Source, and every node must
// reach Sink. Empty graphs (no non-sentinel nodes) are valid.
func (g *Graph) Validate() error {
	if _, err := g.TopologicalOrder(); err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return nil
	}

	fromSource := g.reach(Source, func(id NodeID) []NodeID { return g.nodes[id].out })
	toSink := g.reach(Sink, func(id NodeID) []NodeID { return g.nodes[id].in })
	for _, id := range g.NodeIDs() {
		if !fromSource[id] {
			return fmt.Errorf("%w: %d", ErrUnreachableNode, id)
		}
		if !toSink[id] {
			return fmt.Errorf("%w: %d", ErrDeadEndNode, id)
		}
	}
	return nil
}

// reach marks every node reachable from start by repeatedly following next.
func (g *Graph) reach(start NodeID, next func(NodeID) []NodeID) []bool {
	seen := make([]bool, len(g.nodes))
	seen[start] = true
	stack := []NodeID{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range next(id) {
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// Descendants returns every node reachable from id by following outgoing
// edges, excluding id itself, in ascending ID order.
func (g *Graph) Descendants(id NodeID) ([]NodeID, error) {
	if err := g.check(id); err != nil {
		return nil, err
	}
	seen := g.reach(id, func(n NodeID) []NodeID { return g.nodes[n].out })
	var out []NodeID
	for n, ok := range seen {
		if ok && NodeID(n) != id {
			out = append(out, NodeID(n))
		}
	}
	return out, nil
}

// Roots returns the non-sentinel nodes with no incoming edges, ascending.
func (g *Graph) Roots() []NodeID {
	var out []NodeID
	for _, id := range g.NodeIDs() {
		if len(g.nodes[id].in) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Leaves returns the non-sentinel nodes with no outgoing edges, ascending.
func (g *Graph) Leaves() []NodeID {
	var out []NodeID
	for _, id := range g.NodeIDs() {
		if len(g.nodes[id].out) == 0 {
			out = append(out, id)
		}
	}
	return out
}
