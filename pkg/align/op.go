package align

import (
	"strconv"
	"strings"

	"github.com/matzehuels/poagraph/pkg/dag"
)

// OpKind classifies one step of a sequence-to-graph alignment.
type OpKind uint8

const (
	// OpMatch aligns a sequence symbol to a node carrying the same symbol.
	OpMatch OpKind = iota
	// OpMismatch aligns a sequence symbol to a node carrying another symbol.
	OpMismatch
	// OpInsertion consumes a sequence symbol with no graph counterpart.
	OpInsertion
	// OpDeletion consumes a graph node with no sequence counterpart.
	OpDeletion
)

func (k OpKind) String() string {
	switch k {
	case OpMatch:
		return "match"
	case OpMismatch:
		return "mismatch"
	case OpInsertion:
		return "insertion"
	case OpDeletion:
		return "deletion"
	default:
		return "unknown"
	}
}

// code returns the CIGAR-style letter of k.
func (k OpKind) code() byte {
	switch k {
	case OpMatch:
		return '='
	case OpMismatch:
		return 'X'
	case OpInsertion:
		return 'I'
	case OpDeletion:
		return 'D'
	default:
		return '?'
	}
}

// NoNode marks an [Op] that does not touch the graph.
const NoNode dag.NodeID = -1

// NoPos marks an [Op] that does not consume a sequence symbol.
const NoPos = -1

// Op is one alignment step. Node is [NoNode] for insertions and SeqPos is
// [NoPos] for deletions.
type Op struct {
	Kind   OpKind
	Node   dag.NodeID
	SeqPos int
}

// Result is the optimal alignment of one sequence against a graph.
type Result struct {
	// Ops lists the steps in sequence order, source side first.
	Ops []Op
	// Score is the alignment score under the aligner's scoring scheme.
	Score int
	// Banded reports whether the accepted result came from a banded pass.
	Banded bool
	// Fallback reports that a banded pass could not prove optimality and
	// the full matrix was computed instead.
	Fallback bool
	// Cells counts the DP cells evaluated, across all passes.
	Cells int
}

// Count returns how many ops of kind k the result holds.
func (r Result) Count(k OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// CIGAR renders the ops in run-length form, e.g. "3=1X2I".
func (r Result) CIGAR() string {
	var b strings.Builder
	for i := 0; i < len(r.Ops); {
		j := i
		for j < len(r.Ops) && r.Ops[j].Kind == r.Ops[i].Kind {
			j++
		}
		b.WriteString(strconv.Itoa(j - i))
		b.WriteByte(r.Ops[i].Kind.code())
		i = j
	}
	return b.String()
}
