package poa

import (
	"cmp"
	"slices"

	"github.com/matzehuels/poagraph/pkg/alphabet"
)

// minimizers returns the set of (w,k)-minimizer hashes of seq. A k-mer
// containing N is skipped, and a sequence shorter than minW yields none.
func minimizers(seq []alphabet.Symbol, g Guide) map[uint64]struct{} {
	out := make(map[uint64]struct{})
	if len(seq) < g.MinW || len(seq) < g.K {
		return out
	}

	mask := uint64(1)<<(2*g.K) - 1
	var (
		kmer   uint64
		valid  int
		hashes = make([]uint64, 0, len(seq))
		usable = make([]bool, 0, len(seq))
	)
	for i, s := range seq {
		if !s.IsBase() {
			valid = 0
			kmer = 0
		} else {
			kmer = (kmer<<2 | uint64(s)) & mask
			valid++
		}
		if i+1 < g.K {
			continue
		}
		hashes = append(hashes, mix64(kmer))
		usable = append(usable, valid >= g.K)
	}

	w := min(g.W, len(hashes))
	for start := 0; start+w <= len(hashes); start++ {
		best, found := uint64(0), false
		for j := start; j < start+w; j++ {
			if usable[j] && (!found || hashes[j] < best) {
				best, found = hashes[j], true
			}
		}
		if found {
			out[best] = struct{}{}
		}
	}
	return out
}

// mix64 is the splitmix64 finalizer; it spreads k-mer codes so that the
// minimum of a window is not biased towards poly-A.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

func jaccard(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for h := range a {
		if _, ok := b[h]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}

// guideOrder returns the order in which seqs are folded. The most similar
// pair by minimizer Jaccard similarity comes first; then, repeatedly, the
// sequence most similar to any already ordered one. Sequences without
// minimizers follow in descending length order. Ties go to the smaller
// input index.
func guideOrder(seqs [][]alphabet.Symbol, g Guide) []int {
	sets := make([]map[uint64]struct{}, len(seqs))
	var withMins, without []int
	for i, s := range seqs {
		sets[i] = minimizers(s, g)
		if len(sets[i]) > 0 {
			withMins = append(withMins, i)
		} else {
			without = append(without, i)
		}
	}
	slices.SortStableFunc(without, func(a, b int) int {
		return cmp.Compare(len(seqs[b]), len(seqs[a]))
	})

	order := make([]int, 0, len(seqs))
	if len(withMins) > 0 {
		order = append(order, greedyOrder(withMins, sets)...)
	}
	return append(order, without...)
}

func greedyOrder(idx []int, sets []map[uint64]struct{}) []int {
	n := len(idx)
	if n == 1 {
		return idx
	}
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	bi, bj, best := 0, 1, -1.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := jaccard(sets[idx[i]], sets[idx[j]])
			sim[i][j], sim[j][i] = s, s
			if s > best {
				bi, bj, best = i, j, s
			}
		}
	}

	placed := make([]bool, n)
	// closest[k] is the best similarity of k to any placed sequence.
	closest := make([]float64, n)
	order := make([]int, 0, n)
	place := func(i int) {
		placed[i] = true
		order = append(order, idx[i])
		for k := range closest {
			closest[k] = max(closest[k], sim[i][k])
		}
	}
	place(bi)
	place(bj)
	for len(order) < n {
		pick, score := -1, -1.0
		for k := 0; k < n; k++ {
			if !placed[k] && closest[k] > score {
				pick, score = k, closest[k]
			}
		}
		place(pick)
	}
	return order
}
