package align

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
)

// ErrGapInSequence is returned when a sequence handed to [Aligner.Align]
// contains a gap symbol. Callers strip gaps before aligning.
var ErrGapInSequence = errors.New("gap symbol in input sequence")

// errNoPath reports a non-empty graph in which no node lies on a path from
// Source to Sink, so there is nothing to align against.
var errNoPath = fmt.Errorf("align: %w: no node links source to sink", dag.ErrUnreachableNode)

// negInf marks an unreachable cell. It is far enough from math.MinInt32 that
// subtracting penalties from it cannot wrap.
const negInf = math.MinInt32 / 2

// Options configures an [Aligner].
type Options struct {
	Scoring Scoring
	Mode    Mode
	Band    Band
}

// DefaultOptions returns default scoring in banded mode.
func DefaultOptions() Options {
	return Options{Scoring: DefaultScoring(), Mode: ModeBanded, Band: DefaultBand()}
}

// Validate checks scoring and band parameters.
func (o Options) Validate() error {
	if err := o.Scoring.Validate(); err != nil {
		return err
	}
	if o.Mode != ModeBanded && o.Mode != ModeExact {
		return fmt.Errorf("unknown alignment mode %d", o.Mode)
	}
	return o.Band.Validate()
}

// Aligner computes global alignments of sequences against a [dag.Graph].
// An Aligner holds no per-call state and may be shared between goroutines,
// each aligning against its own graph.
type Aligner struct {
	opts Options
}

// New returns an Aligner for the given options.
func New(opts Options) (*Aligner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Aligner{opts: opts}, nil
}

// Options returns the aligner's configuration.
func (a *Aligner) Options() Options { return a.opts }

// cell is one (row, sequence position) entry of the three affine-gap
// matrices plus the traceback pointers that produced it. h is the best
// score ending at the cell, f the best ending in a deletion, e the best
// ending in an insertion.
type cell struct {
	h, e, f int32
	mPred   int32 // row of the predecessor used by the match/mismatch move
	fPred   int32 // row of the predecessor used by the deletion move
	from    state // which of m, f, e produced h
	fExt    bool  // f extends the predecessor's f rather than opening from h
	eExt    bool  // e extends the left neighbour's e rather than opening from h
}

type state uint8

const (
	stateH state = iota
	stateM
	stateF
	stateE
)

type row struct {
	win   window
	cells []cell
}

func (r *row) at(j int) *cell {
	if !r.win.contains(j) {
		return nil
	}
	return &r.cells[j-r.win.lo]
}

// Align returns the optimal global alignment of seq against g.
//
// Rows follow g's topological order. In banded mode the result is accepted
// only when its score beats every alignment that could leave the band;
// otherwise the full matrix is computed and Result.Fallback is set, so
// banding never changes the answer.
//
// An empty seq yields an empty result. A graph without nodes yields one
// insertion per symbol. A cyclic graph is reported as [dag.ErrCyclicGraph],
// and a graph whose nodes form no Source to Sink path as
// [dag.ErrUnreachableNode].
func (a *Aligner) Align(g *dag.Graph, seq []alphabet.Symbol) (Result, error) {
	if slices.Contains(seq, alphabet.Gap) {
		return Result{}, ErrGapInSequence
	}
	if len(seq) == 0 {
		return Result{}, nil
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return Result{}, fmt.Errorf("align: %w", err)
	}
	ranks, err := g.Ranks()
	if err != nil {
		return Result{}, fmt.Errorf("align: %w", err)
	}
	if g.NodeCount() == 0 {
		return a.allInsertions(len(seq)), nil
	}
	if preds, _ := g.Predecessors(dag.Sink); len(preds) == 0 {
		return Result{}, errNoPath
	}

	m := &matrix{g: g, seq: seq, order: order, ranks: ranks, s: a.opts.Scoring}
	if a.opts.Mode == ModeBanded {
		hw := a.opts.Band.HalfWidth(len(seq))
		full := m.fill(bandWindows(g, order, len(seq), hw, true))
		res, ok := m.traceback()
		if ok && (full || res.Score > bandBound(m.s, len(seq), hw)) {
			res.Banded = true
			res.Cells = m.cells
			return res, nil
		}
		cells := m.cells
		m.fill(bandWindows(g, order, len(seq), 0, false))
		res, ok = m.traceback()
		if !ok {
			return Result{}, errNoPath
		}
		res.Fallback = true
		res.Cells = cells + m.cells
		return res, nil
	}

	m.fill(bandWindows(g, order, len(seq), 0, false))
	res, ok := m.traceback()
	if !ok {
		return Result{}, errNoPath
	}
	res.Cells = m.cells
	return res, nil
}

func (a *Aligner) allInsertions(n int) Result {
	ops := make([]Op, n)
	for i := range ops {
		ops[i] = Op{Kind: OpInsertion, Node: NoNode, SeqPos: i}
	}
	return Result{Ops: ops, Score: -a.opts.Scoring.GapCost(n)}
}

// matrix is the DP state of one Align call.
type matrix struct {
	g     *dag.Graph
	seq   []alphabet.Symbol
	order []dag.NodeID
	ranks []int
	s     Scoring
	rows  []row
	cells int
}

// fill computes every row except Sink's and reports whether every window
// spans the whole sequence (the pass was effectively exact).
func (m *matrix) fill(wins []window) bool {
	n := len(m.seq)
	open := int32(m.s.GapOpen + m.s.GapExtend)
	ext := int32(m.s.GapExtend)
	m.rows = make([]row, len(m.order)-1)
	m.cells = 0
	full := true

	for i := range m.rows {
		w := wins[i]
		if w.lo > 0 || w.hi < n {
			full = false
		}
		r := &m.rows[i]
		r.win = w
		r.cells = make([]cell, w.size())
		m.cells += w.size()
		if i == 0 {
			m.fillSource(r, open, ext)
			continue
		}

		v := m.order[i]
		sym, _ := m.g.Symbol(v)
		preds, _ := m.g.Predecessors(v)
		for j := w.lo; j <= w.hi; j++ {
			c := r.at(j)
			c.mPred, c.fPred = -1, -1

			// Deletion: consume v, stay at sequence position j.
			c.f = negInf
			var fBest dag.NodeID = -1
			for _, u := range preds {
				pc := m.rows[m.ranks[u]].at(j)
				if pc == nil {
					continue
				}
				cand, isExt := int32(negInf), false
				if pc.h > negInf {
					cand = pc.h - open
				}
				if pc.f > negInf && pc.f-ext > cand {
					cand, isExt = pc.f-ext, true
				}
				if cand <= negInf {
					continue
				}
				if cand > c.f || (cand == c.f && u < fBest) {
					c.f, c.fPred, c.fExt, fBest = cand, int32(m.ranks[u]), isExt, u
				}
			}

			// Match or mismatch: consume v and seq[j-1].
			mScore := int32(negInf)
			if j > 0 {
				sub := int32(m.s.Score(sym, m.seq[j-1]))
				var mBest dag.NodeID = -1
				for _, u := range preds {
					pc := m.rows[m.ranks[u]].at(j - 1)
					if pc == nil || pc.h <= negInf {
						continue
					}
					cand := pc.h + sub
					if cand > mScore || (cand == mScore && u < mBest) {
						mScore, c.mPred, mBest = cand, int32(m.ranks[u]), u
					}
				}
			}

			// Insertion: consume seq[j-1], stay at v.
			c.e = negInf
			if left := r.at(j - 1); j > 0 && left != nil {
				if left.h > negInf {
					c.e = left.h - open
				}
				if left.e > negInf && left.e-ext > c.e {
					c.e, c.eExt = left.e-ext, true
				}
			}

			c.h, c.from = mScore, stateM
			if c.f > c.h {
				c.h, c.from = c.f, stateF
			}
			if c.e > c.h {
				c.h, c.from = c.e, stateE
			}
		}
	}
	return full
}

// fillSource fills the Source row, where the only moves are leading
// insertions.
func (m *matrix) fillSource(r *row, open, ext int32) {
	for j := r.win.lo; j <= r.win.hi; j++ {
		c := r.at(j)
		c.f, c.mPred, c.fPred = negInf, -1, -1
		switch j {
		case 0:
			c.h, c.e, c.from = 0, negInf, stateM
		default:
			c.h = -(open + int32(j-1)*ext)
			c.e, c.from, c.eExt = c.h, stateE, j > 1
		}
	}
}

// traceback walks back from Sink. It reports false when no finite score
// reaches Sink.
func (m *matrix) traceback() (Result, bool) {
	n := len(m.seq)
	preds, _ := m.g.Predecessors(dag.Sink)
	best, bestRow := int32(negInf), -1
	var bestID dag.NodeID = -1
	for _, u := range preds {
		c := m.rows[m.ranks[u]].at(n)
		if c == nil || c.h <= negInf {
			continue
		}
		if c.h > best || (c.h == best && u < bestID) {
			best, bestRow, bestID = c.h, m.ranks[u], u
		}
	}
	if bestRow < 0 {
		return Result{}, false
	}

	ops := make([]Op, 0, n+len(m.order)/4)
	i, j, st := bestRow, n, stateH
	for i > 0 {
		c := m.rows[i].at(j)
		v := m.order[i]
		switch st {
		case stateH:
			st = c.from
		case stateM:
			sym, _ := m.g.Symbol(v)
			kind := OpMismatch
			if sym == m.seq[j-1] {
				kind = OpMatch
			}
			ops = append(ops, Op{Kind: kind, Node: v, SeqPos: j - 1})
			i, j, st = int(c.mPred), j-1, stateH
		case stateF:
			ops = append(ops, Op{Kind: OpDeletion, Node: v, SeqPos: NoPos})
			next := stateH
			if c.fExt {
				next = stateF
			}
			i, st = int(c.fPred), next
		case stateE:
			ops = append(ops, Op{Kind: OpInsertion, Node: NoNode, SeqPos: j - 1})
			if !c.eExt {
				st = stateH
			}
			j--
		}
	}
	for ; j > 0; j-- {
		ops = append(ops, Op{Kind: OpInsertion, Node: NoNode, SeqPos: j - 1})
	}
	slices.Reverse(ops)
	return Result{Ops: ops, Score: int(best)}, true
}
