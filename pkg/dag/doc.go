// Package dag provides the partial-order alignment graph: a directed acyclic
// graph of single-symbol nodes into which sequences are folded.
//
// # Overview
//
// Every sequence folded into the graph becomes a path from the virtual
// [Source] node to the virtual [Sink] node. Shared subsequences collapse onto
// shared nodes, so after folding the graph records both what the sequences
// have in common and where they branch. Node and edge weights count how many
// sequences pass through each element; consensus extraction reads them.
//
// # Basic Usage
//
// Create a graph with [New], allocate nodes with [Graph.AddNode] and link
// them with [Graph.AddEdge]. Adding an edge that already exists increments
// its weight instead of creating a duplicate:
//
//	g := dag.New()
//	a, _ := g.AddNode(alphabet.A)
//	c, _ := g.AddNode(alphabet.C)
//	_ = g.ConnectToSource(a)
//	_ = g.AddEdge(a, c)
//	_ = g.ConnectToSink(c)
//	_, _ = g.RecordPath([]dag.NodeID{a, c})
//
// [Graph.RecordPath] registers a sequence's route and bumps node weights;
// the path is later replayed by MSA extraction.
//
// # Identifiers
//
// Nodes live in an arena indexed by [NodeID]. IDs are handed out in
// insertion order starting after the two sentinels, and are never reused
// until [Graph.Clear]. Referencing an ID the graph never allocated yields
// [ErrInvalidNodeReference].
//
// # Ordering
//
// [Graph.TopologicalOrder] runs Kahn's algorithm with a min-heap so that
// unordered nodes come out in ascending ID order. The result is cached and
// invalidated by mutation. A cycle is reported as [ErrCyclicGraph] and is
// never repaired.
//
// # Aligned Nodes
//
// When a folded sequence mismatches an existing node, the new node is
// recorded as aligned to it with [Graph.AlignNodes]. Aligned nodes share an
// MSA column and are the first candidates when a later sequence mismatches
// at the same position.
//
// # Concurrency
//
// Graphs are not safe for concurrent mutation. After construction, call
// [Graph.TopologicalOrder] once; from then on concurrent readers are safe.
package dag
