package align

import (
	"fmt"
	"math"

	"github.com/matzehuels/poagraph/pkg/dag"
)

// Mode selects between the banded and the exhaustive DP.
type Mode int

const (
	// ModeBanded restricts each graph row to the sequence positions near the
	// row's distance from Source, and falls back to ModeExact when the band
	// cannot be proven to contain the optimum.
	ModeBanded Mode = iota
	// ModeExact evaluates every cell.
	ModeExact
)

func (m Mode) String() string {
	switch m {
	case ModeBanded:
		return "banded"
	case ModeExact:
		return "exact"
	default:
		return "unknown"
	}
}

// ParseMode converts "banded" or "exact" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "banded", "":
		return ModeBanded, nil
	case "exact":
		return ModeExact, nil
	default:
		return 0, fmt.Errorf("unknown alignment mode %q", s)
	}
}

// Band sizes the banded pass. The half-width for a sequence of length n is
// Width + ceil(Fraction*n).
type Band struct {
	Width    int     `json:"width" toml:"width"`
	Fraction float64 `json:"fraction" toml:"fraction"`
}

// DefaultBand returns width 10 and fraction 0.01.
func DefaultBand() Band { return Band{Width: 10, Fraction: 0.01} }

// HalfWidth returns the band half-width for a sequence of length n.
func (b Band) HalfWidth(n int) int {
	return b.Width + int(math.Ceil(b.Fraction*float64(n)))
}

// Validate rejects negative widths and fractions.
func (b Band) Validate() error {
	if b.Width < 0 {
		return fmt.Errorf("band width must be >= 0, got %d", b.Width)
	}
	if b.Fraction < 0 || math.IsNaN(b.Fraction) {
		return fmt.Errorf("band fraction must be >= 0, got %v", b.Fraction)
	}
	return nil
}

// window is the inclusive range of sequence positions computed for a row.
// An empty window has lo > hi.
type window struct{ lo, hi int }

func (w window) contains(j int) bool { return j >= w.lo && j <= w.hi }
func (w window) size() int           { return max(0, w.hi-w.lo+1) }

// distances returns, per node, the fewest and the most nodes on any path
// from Source to that node (Source itself is 0). Nodes unreachable from
// Source get min = math.MaxInt.
func distances(g *dag.Graph, order []dag.NodeID) (lo, hi []int) {
	lo = make([]int, g.Cap())
	hi = make([]int, g.Cap())
	for i := range lo {
		lo[i] = math.MaxInt
		hi[i] = -1
	}
	lo[dag.Source], hi[dag.Source] = 0, 0
	for _, v := range order {
		if lo[v] == math.MaxInt {
			continue
		}
		succ, _ := g.Successors(v)
		for _, s := range succ {
			lo[s] = min(lo[s], lo[v]+1)
			hi[s] = max(hi[s], hi[v]+1)
		}
	}
	return lo, hi
}

// bandWindows returns the window of every row in exact or banded mode.
func bandWindows(g *dag.Graph, order []dag.NodeID, n, halfWidth int, banded bool) []window {
	wins := make([]window, len(order))
	if !banded {
		for i := range wins {
			wins[i] = window{0, n}
		}
		return wins
	}
	lo, hi := distances(g, order)
	for i, v := range order {
		if lo[v] == math.MaxInt {
			wins[i] = window{1, 0}
			continue
		}
		wins[i] = window{max(0, lo[v]-halfWidth), min(n, hi[v]+halfWidth)}
	}
	return wins
}

// bandBound is the best score any alignment leaving the band can reach.
// Leaving a band of half-width w requires an insertion/deletion imbalance of
// more than w, hence at least w+1 gap symbols, while at most n symbols earn
// the match score.
func bandBound(s Scoring, n, halfWidth int) int {
	return n*s.Match - s.GapCost(halfWidth+1)
}
