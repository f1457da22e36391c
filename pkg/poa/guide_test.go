package poa

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/poagraph/pkg/alphabet"
)

func TestMinimizers(t *testing.T) {
	g := DefaultGuide()
	tests := []struct {
		name  string
		seq   string
		empty bool
	}{
		{"shorter than min_w", "ACGTACGTA", true},
		{"all N", strings.Repeat("N", 40), true},
		{"regular", "ACGTTGCAAGGCTTACCGATGCA", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := minimizers(encodeAll(tt.seq), g)
			if (len(got) == 0) != tt.empty {
				t.Errorf("minimizers(%q) has %d entries, empty = %v", tt.seq, len(got), tt.empty)
			}
		})
	}
}

func TestJaccard(t *testing.T) {
	g := DefaultGuide()
	a := minimizers(encodeAll("ACGTTGCAAGGCTTACCGATGCAGGT"), g)
	if s := jaccard(a, a); s != 1 {
		t.Errorf("jaccard(a, a) = %v, want 1", s)
	}
	if s := jaccard(a, nil); s != 0 {
		t.Errorf("jaccard(a, nil) = %v, want 0", s)
	}
}

func TestGuideOrder(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	x := randomSeq(r, 120)
	y := randomSeq(r, 120)
	xm := []byte(x)
	xm[60] = "ACGT"[(strings.IndexByte("ACGT", xm[60])+1)%4]

	seqs := [][]byte{[]byte(x), []byte(y), xm, []byte("ACGT")}
	encoded := make([][]alphabet.Symbol, len(seqs))
	for i, s := range seqs {
		encoded[i] = encodeAll(string(s))
	}
	got := guideOrder(encoded, DefaultGuide())
	if want := []int{0, 2, 1, 3}; !slices.Equal(got, want) {
		t.Errorf("guideOrder() = %v, want %v", got, want)
	}
}

func TestGuideOrderShortSequences(t *testing.T) {
	encoded := [][]alphabet.Symbol{encodeAll("ACG"), encodeAll("ACGTAC"), encodeAll("A"), encodeAll("TTTTTT")}
	got := guideOrder(encoded, DefaultGuide())
	if want := []int{1, 3, 0, 2}; !slices.Equal(got, want) {
		t.Errorf("guideOrder() = %v, want %v", got, want)
	}
}
