package alphabet

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in   byte
		want Symbol
	}{
		{'A', A}, {'c', C}, {'G', G}, {'t', T},
		{'N', N}, {'R', N}, {'x', N}, {0, N}, {255, N},
		{'-', Gap},
	}
	for _, tt := range tests {
		if got := Encode(tt.in); got != tt.want {
			t.Errorf("Encode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEncodeStrict(t *testing.T) {
	if got := EncodeStrict('A'); got != A {
		t.Errorf("EncodeStrict('A') = %v, want A", got)
	}
	if got := EncodeStrict('a'); got != N {
		t.Errorf("EncodeStrict('a') = %v, want N", got)
	}
}

func TestCodecEncodeUngapped(t *testing.T) {
	got := Codec{}.EncodeUngapped("ac-g--T")
	want := []Symbol{A, C, G, T}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	strict := Codec{CaseSensitive: true}.EncodeString("aC")
	if strict[0] != N || strict[1] != C {
		t.Errorf("case-sensitive encode = %v, want [N C]", strict)
	}
}

func TestDecode(t *testing.T) {
	for s := A; s <= N; s++ {
		a, err := Decode(s, Alignment)
		if err != nil {
			t.Fatalf("Decode(%v, Alignment) error: %v", s, err)
		}
		c, err := Decode(s, Consensus)
		if err != nil {
			t.Fatalf("Decode(%v, Consensus) error: %v", s, err)
		}
		if a != c {
			t.Errorf("Decode(%v) differs between contexts: %q vs %q", s, a, c)
		}
	}

	if c, err := Decode(Gap, Alignment); err != nil || c != '-' {
		t.Errorf("Decode(Gap, Alignment) = %q, %v; want '-', nil", c, err)
	}
	if _, err := Decode(Gap, Consensus); !errors.Is(err, ErrUnexpectedGap) {
		t.Errorf("Decode(Gap, Consensus) error = %v, want ErrUnexpectedGap", err)
	}
	if _, err := Decode(Symbol(42), Alignment); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Decode(42) error = %v, want ErrUnknownSymbol", err)
	}
}

func TestDecodeStringRoundTrip(t *testing.T) {
	const in = "ACGTN-"
	got, err := DecodeString(Codec{}.EncodeString(in), Alignment)
	if err != nil {
		t.Fatal(err)
	}
	if got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}

	if _, err := DecodeString([]Symbol{A, Gap}, Consensus); !errors.Is(err, ErrUnexpectedGap) {
		t.Errorf("DecodeString with gap in consensus = %v, want ErrUnexpectedGap", err)
	}
}
