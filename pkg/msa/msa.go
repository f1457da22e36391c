// Package msa turns a partial-order alignment graph back into a multiple
// sequence alignment: a matrix of equal-length, gap-padded rows.
//
// # Columns
//
// Every node visited by a selected sequence gets a column. Nodes recorded
// as aligned to each other (alternative bases at one position, see
// [dag.Graph.AlignNodes]) share a column. Columns are ordered by a
// topological sort of the node groups, releasing ready groups by their
// smallest graph rank so the layout is deterministic.
//
// If the groups cannot be ordered (two aligned nodes ended up on one path,
// or groups form a cycle) the extractor falls back to one column per node
// in graph topological order. Both layouts guarantee that every row has
// exactly [MSA.Length] characters.
//
// # Rows
//
// Each row replays the path the graph recorded for that sequence when it
// was folded in, writing the node's symbol in its column and '-' elsewhere.
package msa

import (
	"container/heap"
	"fmt"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
)

// MSA is an alignment of sequences folded into a graph.
type MSA struct {
	// Rows holds one gapped string per selected sequence, in request order.
	Rows []string `json:"rows"`
	// Length is the number of columns; every row has this many characters.
	Length int `json:"length"`
	// NumSeqs is the number of sequence rows, excluding any extra row.
	NumSeqs int `json:"num_seqs"`
	// Extra is the gapped rendering of Options.Extra, empty if none was given.
	Extra string `json:"extra,omitempty"`
	// Grouped reports whether aligned nodes were merged into shared columns.
	Grouped bool `json:"grouped"`
}

// Options selects what to extract.
type Options struct {
	// Sequences lists the graph sequence indices to render, in output order.
	// Nil selects every recorded sequence in fold order.
	Sequences []int
	// Extra is an additional path (typically the consensus) rendered as a
	// row of its own. Its nodes get columns even if no sequence visits them.
	Extra []dag.NodeID
	// PerNode forces one column per node, skipping group merging.
	PerNode bool
}

// Extract builds the alignment of the selected sequences. Selecting no
// sequences yields an empty alignment.
func Extract(g *dag.Graph, opts Options) (*MSA, error) {
	seqs := opts.Sequences
	if seqs == nil {
		seqs = make([]int, g.SequenceCount())
		for i := range seqs {
			seqs[i] = i
		}
	}

	paths := make([][]dag.NodeID, 0, len(seqs)+1)
	for _, i := range seqs {
		p, err := g.Path(i)
		if err != nil {
			return nil, fmt.Errorf("msa: %w", err)
		}
		paths = append(paths, p)
	}
	if opts.Extra != nil {
		for _, id := range opts.Extra {
			if !g.Has(id) || id.IsSentinel() {
				return nil, fmt.Errorf("msa: %w: %d", dag.ErrInvalidNodeReference, id)
			}
		}
		paths = append(paths, opts.Extra)
	}

	ranks, err := g.Ranks()
	if err != nil {
		return nil, fmt.Errorf("msa: %w", err)
	}

	used := make([]bool, g.Cap())
	for _, p := range paths {
		for _, id := range p {
			used[id] = true
		}
	}

	col, n, grouped := assignColumns(g, ranks, used, paths, opts.PerNode)

	out := &MSA{Length: n, NumSeqs: len(seqs), Grouped: grouped, Rows: make([]string, 0, len(seqs))}
	for i, p := range paths {
		row, err := render(g, col, n, p)
		if err != nil {
			return nil, err
		}
		if i < len(seqs) {
			out.Rows = append(out.Rows, row)
		} else {
			out.Extra = row
		}
	}
	return out, nil
}

func render(g *dag.Graph, col []int, n int, path []dag.NodeID) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = '-'
	}
	for _, id := range path {
		sym, err := g.Symbol(id)
		if err != nil {
			return "", fmt.Errorf("msa: %w", err)
		}
		c, err := alphabet.Decode(sym, alphabet.Alignment)
		if err != nil {
			return "", fmt.Errorf("msa: node %d: %w", id, err)
		}
		buf[col[id]] = c
	}
	return string(buf), nil
}

// assignColumns maps every used node to a column and returns the column
// count. It tries grouped columns first and falls back to one per node.
func assignColumns(g *dag.Graph, ranks []int, used []bool, paths [][]dag.NodeID, perNode bool) ([]int, int, bool) {
	if !perNode {
		if col, n, ok := groupColumns(g, ranks, used, paths); ok {
			return col, n, true
		}
	}
	order, _ := g.TopologicalOrder()
	col := make([]int, g.Cap())
	n := 0
	for _, id := range order {
		if used[id] {
			col[id] = n
			n++
		}
	}
	return col, n, false
}

// groupColumns orders groups of aligned nodes. It reports false when the
// groups admit no consistent order.
func groupColumns(g *dag.Graph, ranks []int, used []bool, paths [][]dag.NodeID) ([]int, int, bool) {
	// group[id] is the representative (smallest used ID) of id's group.
	group := make([]dag.NodeID, g.Cap())
	for i := range group {
		group[i] = -1
	}
	minRank := make(map[dag.NodeID]int)
	var reps []dag.NodeID
	for id := range used {
		nid := dag.NodeID(id)
		if !used[id] || group[id] >= 0 {
			continue
		}
		group[id] = nid
		minRank[nid] = ranks[id]
		reps = append(reps, nid)
		peers, _ := g.Aligned(nid)
		for _, p := range peers {
			if used[p] {
				group[p] = nid
				minRank[nid] = min(minRank[nid], ranks[p])
			}
		}
	}

	// Group edges come from consecutive nodes on the rendered paths; only
	// those orderings are observable in the output.
	succ := make(map[dag.NodeID][]dag.NodeID)
	indeg := make(map[dag.NodeID]int, len(reps))
	seen := make(map[[2]dag.NodeID]bool)
	for _, p := range paths {
		visited := make(map[dag.NodeID]bool, len(p))
		for i, id := range p {
			gi := group[id]
			if visited[gi] {
				return nil, 0, false
			}
			visited[gi] = true
			if i == 0 {
				continue
			}
			from := group[p[i-1]]
			if k := [2]dag.NodeID{from, gi}; !seen[k] {
				seen[k] = true
				succ[from] = append(succ[from], gi)
				indeg[gi]++
			}
		}
	}

	ready := &rankHeap{rank: minRank}
	for _, r := range reps {
		if indeg[r] == 0 {
			heap.Push(ready, r)
		}
	}
	colOf := make(map[dag.NodeID]int, len(reps))
	for ready.Len() > 0 {
		r := heap.Pop(ready).(dag.NodeID)
		colOf[r] = len(colOf)
		for _, s := range succ[r] {
			indeg[s]--
			if indeg[s] == 0 {
				heap.Push(ready, s)
			}
		}
	}
	if len(colOf) != len(reps) {
		return nil, 0, false
	}

	col := make([]int, g.Cap())
	for id, gi := range group {
		if gi >= 0 {
			col[id] = colOf[gi]
		}
	}
	return col, len(reps), true
}

// rankHeap releases group representatives by smallest member rank.
type rankHeap struct {
	ids  []dag.NodeID
	rank map[dag.NodeID]int
}

func (h rankHeap) Len() int { return len(h.ids) }
func (h rankHeap) Less(i, j int) bool {
	ri, rj := h.rank[h.ids[i]], h.rank[h.ids[j]]
	if ri != rj {
		return ri < rj
	}
	return h.ids[i] < h.ids[j]
}
func (h rankHeap) Swap(i, j int) { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *rankHeap) Push(x any)   { h.ids = append(h.ids, x.(dag.NodeID)) }
func (h *rankHeap) Pop() any {
	n := len(h.ids)
	x := h.ids[n-1]
	h.ids = h.ids[:n-1]
	return x
}
