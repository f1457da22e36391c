package poa

import (
	"fmt"

	"github.com/matzehuels/poagraph/pkg/align"
)

// MismatchPolicy decides what happens to a sequence symbol that the aligner
// placed against a node carrying a different symbol.
type MismatchPolicy int

const (
	// MismatchAligned reuses a node already aligned to the mismatched node
	// when one carries the sequence's symbol, and otherwise creates a
	// parallel node aligned to it.
	MismatchAligned MismatchPolicy = iota
	// MismatchNewNode always creates a parallel node. It is still recorded
	// as aligned, so it shares the mismatched node's MSA column.
	MismatchNewNode
)

func (p MismatchPolicy) String() string {
	switch p {
	case MismatchAligned:
		return "aligned"
	case MismatchNewNode:
		return "new-node"
	default:
		return "unknown"
	}
}

// ParseMismatchPolicy converts "aligned" or "new-node" to a MismatchPolicy.
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch s {
	case "aligned", "":
		return MismatchAligned, nil
	case "new-node":
		return MismatchNewNode, nil
	default:
		return 0, fmt.Errorf("unknown mismatch policy %q (must be aligned or new-node)", s)
	}
}

// BoundaryPolicy decides which manually built nodes are linked to the
// Source and Sink sentinels by [Engine.AddNodesEdges].
type BoundaryPolicy int

const (
	// BoundaryDangling links every node without predecessors to Source and
	// every node without successors to Sink, so each branch is reachable.
	BoundaryDangling BoundaryPolicy = iota
	// BoundaryFirstLast links only the first node of the first chain to
	// Source and the last node of the last chain to Sink.
	BoundaryFirstLast
)

func (p BoundaryPolicy) String() string {
	switch p {
	case BoundaryDangling:
		return "dangling"
	case BoundaryFirstLast:
		return "first-last"
	default:
		return "unknown"
	}
}

// ParseBoundaryPolicy converts "dangling" or "first-last" to a BoundaryPolicy.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch s {
	case "dangling", "":
		return BoundaryDangling, nil
	case "first-last":
		return BoundaryFirstLast, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q (must be dangling or first-last)", s)
	}
}

// Guide holds the minimizer parameters of progressive folding.
type Guide struct {
	K    int `json:"k" toml:"k"`         // k-mer size
	W    int `json:"w" toml:"w"`         // minimizer window, in k-mers
	MinW int `json:"min_w" toml:"min_w"` // shorter sequences contribute no minimizers
}

// DefaultGuide returns k=9, w=6, min_w=10.
func DefaultGuide() Guide { return Guide{K: 9, W: 6, MinW: 10} }

// Validate rejects k outside [1, 31] and non-positive windows.
func (g Guide) Validate() error {
	if g.K < 1 || g.K > 31 {
		return fmt.Errorf("k must be in [1, 31], got %d", g.K)
	}
	if g.W < 1 {
		return fmt.Errorf("w must be >= 1, got %d", g.W)
	}
	if g.MinW < 0 {
		return fmt.Errorf("min_w must be >= 0, got %d", g.MinW)
	}
	return nil
}

// Params configures an [Engine].
type Params struct {
	Align         align.Options
	Mismatch      MismatchPolicy
	Boundary      BoundaryPolicy
	Progressive   bool
	Guide         Guide
	CaseSensitive bool
}

// DefaultParams returns banded alignment with default scoring, aligned
// mismatches, dangling boundaries, and progressive folding enabled.
func DefaultParams() Params {
	return Params{
		Align:       align.DefaultOptions(),
		Mismatch:    MismatchAligned,
		Boundary:    BoundaryDangling,
		Progressive: true,
		Guide:       DefaultGuide(),
	}
}

// Validate checks every nested parameter group.
func (p Params) Validate() error {
	if err := p.Align.Validate(); err != nil {
		return err
	}
	if p.Mismatch != MismatchAligned && p.Mismatch != MismatchNewNode {
		return fmt.Errorf("unknown mismatch policy %d", p.Mismatch)
	}
	if p.Boundary != BoundaryDangling && p.Boundary != BoundaryFirstLast {
		return fmt.Errorf("unknown boundary policy %d", p.Boundary)
	}
	if p.Progressive {
		return p.Guide.Validate()
	}
	return nil
}
