// Package alphabet maps nucleotide characters to the small symbol alphabet
// used by the alignment graph, and back.
//
// The alphabet has six symbols: the four nucleotides, an ambiguous symbol
// (N) and a gap. Encoding is total: any byte outside the recognized set
// degrades to [N] instead of failing. Decoding depends on where the symbol
// is going. Alignment output renders gaps as '-', consensus output never
// contains gaps, and decoding one there is reported as [ErrUnexpectedGap].
package alphabet

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedGap is returned by [Decode] when a gap symbol is decoded
	// in consensus context. Consensus paths only ever visit graph nodes, and
	// graph nodes never carry gaps, so this signals a logic error upstream.
	ErrUnexpectedGap = errors.New("gap symbol in consensus output")

	// ErrUnknownSymbol is returned by [Decode] for values outside the alphabet.
	ErrUnknownSymbol = errors.New("unknown symbol")
)

// Symbol is one value of the nucleotide alphabet.
type Symbol uint8

const (
	A Symbol = iota
	C
	G
	T
	N   // ambiguous base
	Gap // alignment gap, never a graph node payload
)

// Size is the number of distinct symbols, gap included.
const Size = 6

const (
	alignAlphabet     = "ACGTN-"
	consensusAlphabet = "ACGTN"
)

// Context selects how [Decode] renders a symbol.
type Context int

const (
	// Alignment renders gaps as '-'.
	Alignment Context = iota
	// Consensus rejects gaps with ErrUnexpectedGap.
	Consensus
)

func (c Context) String() string {
	switch c {
	case Alignment:
		return "alignment"
	case Consensus:
		return "consensus"
	default:
		return "unknown"
	}
}

var (
	foldTable   [256]Symbol
	strictTable [256]Symbol
)

func init() {
	for i := range foldTable {
		foldTable[i] = N
		strictTable[i] = N
	}
	for i, c := range []byte("ACGT") {
		s := Symbol(i)
		foldTable[c] = s
		foldTable[c+'a'-'A'] = s
		strictTable[c] = s
	}
	foldTable['-'] = Gap
	strictTable['-'] = Gap
}

// Encode maps c to its symbol, folding case. Unrecognized bytes map to N.
func Encode(c byte) Symbol { return foldTable[c] }

// EncodeStrict maps c to its symbol without folding case, so lower-case
// nucleotides map to N.
func EncodeStrict(c byte) Symbol { return strictTable[c] }

// Codec encodes whole sequences with a fixed case policy.
// The zero value folds case.
type Codec struct {
	CaseSensitive bool
}

// Encode maps one byte according to the codec's case policy.
func (c Codec) Encode(b byte) Symbol {
	if c.CaseSensitive {
		return strictTable[b]
	}
	return foldTable[b]
}

// EncodeString encodes every byte of s, keeping gaps.
func (c Codec) EncodeString(s string) []Symbol {
	out := make([]Symbol, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = c.Encode(s[i])
	}
	return out
}

// EncodeUngapped encodes s and drops gap characters, producing a sequence
// that can be folded into a graph.
func (c Codec) EncodeUngapped(s string) []Symbol {
	out := make([]Symbol, 0, len(s))
	for i := 0; i < len(s); i++ {
		if sym := c.Encode(s[i]); sym != Gap {
			out = append(out, sym)
		}
	}
	return out
}

// Decode renders s as a character for the given context.
func Decode(s Symbol, ctx Context) (byte, error) {
	if s >= Size {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSymbol, s)
	}
	if ctx == Consensus {
		if s == Gap {
			return 0, ErrUnexpectedGap
		}
		return consensusAlphabet[s], nil
	}
	return alignAlphabet[s], nil
}

// DecodeString renders a symbol slice as a string for the given context.
func DecodeString(syms []Symbol, ctx Context) (string, error) {
	buf := make([]byte, len(syms))
	for i, s := range syms {
		c, err := Decode(s, ctx)
		if err != nil {
			return "", fmt.Errorf("position %d: %w", i, err)
		}
		buf[i] = c
	}
	return string(buf), nil
}

// String returns the alignment rendering of s, or "?" if s is unknown.
func (s Symbol) String() string {
	if s >= Size {
		return "?"
	}
	return alignAlphabet[s : s+1]
}

// IsBase reports whether s is one of A, C, G, T.
func (s Symbol) IsBase() bool { return s <= T }
