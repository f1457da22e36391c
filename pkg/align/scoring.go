package align

import (
	"errors"
	"fmt"

	"github.com/matzehuels/poagraph/pkg/alphabet"
)

// ErrInvalidScoring is returned by [Scoring.Validate].
var ErrInvalidScoring = errors.New("invalid scoring parameters")

// Scoring holds the affine-gap scoring scheme. All values are magnitudes:
// Match is added for equal symbols, Mismatch is subtracted for unequal ones,
// and a gap of length L costs GapOpen + L*GapExtend.
type Scoring struct {
	Match     int `json:"match" toml:"match"`
	Mismatch  int `json:"mismatch" toml:"mismatch"`
	GapOpen   int `json:"gap_open" toml:"gap_open"`
	GapExtend int `json:"gap_extend" toml:"gap_extend"`
}

// DefaultScoring returns the nucleotide defaults: match 2, mismatch 4,
// gap open 4, gap extend 2.
func DefaultScoring() Scoring {
	return Scoring{Match: 2, Mismatch: 4, GapOpen: 4, GapExtend: 2}
}

// Validate rejects negative magnitudes and a zero gap-extend cost.
func (s Scoring) Validate() error {
	switch {
	case s.Match < 0:
		return fmt.Errorf("%w: match must be >= 0, got %d", ErrInvalidScoring, s.Match)
	case s.Mismatch < 0:
		return fmt.Errorf("%w: mismatch must be >= 0, got %d", ErrInvalidScoring, s.Mismatch)
	case s.GapOpen < 0:
		return fmt.Errorf("%w: gap_open must be >= 0, got %d", ErrInvalidScoring, s.GapOpen)
	case s.GapExtend <= 0:
		return fmt.Errorf("%w: gap_extend must be > 0, got %d", ErrInvalidScoring, s.GapExtend)
	}
	return nil
}

// Score returns the substitution score of aligning a to b.
func (s Scoring) Score(a, b alphabet.Symbol) int {
	if a == b {
		return s.Match
	}
	return -s.Mismatch
}

// GapCost returns the penalty of a gap of the given length (0 for length 0).
func (s Scoring) GapCost(length int) int {
	if length <= 0 {
		return 0
	}
	return s.GapOpen + length*s.GapExtend
}
