package nodelink

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/poagraph/pkg/alphabet"
	"github.com/matzehuels/poagraph/pkg/dag"
)

// sampleGraph holds ACGT and ACCT with the second C aligned to G.
// Node IDs: A=2 C=3 G=4 T=5 C'=6.
func sampleGraph(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, c := range []byte("ACGTC") {
		if _, err := g.AddNode(alphabet.Encode(c)); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AlignNodes(4, 6); err != nil {
		t.Fatal(err)
	}
	for _, path := range [][]dag.NodeID{{2, 3, 4, 5}, {2, 3, 6, 5}} {
		prev := dag.Source
		for _, id := range append(path, dag.Sink) {
			if err := g.AddEdge(prev, id); err != nil {
				t.Fatal(err)
			}
			prev = id
		}
		if _, err := g.RecordPath(path); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	g := sampleGraph(t)
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "plain",
			opts: Options{},
			want: []string{
				"rankdir=LR",
				`n2 [label="A", fillcolor="#8fd694"];`,
				"n2 -> n3 [penwidth=1.5",
				"n3 -> n4 [penwidth=1.0",
			},
			notWant: []string{"n0 [", "n0 -> n2", "dir=none"},
		},
		{
			name: "sentinels",
			opts: Options{Sentinels: true},
			want: []string{`n0 [label="S"`, `n1 [label="E"`, "n0 -> n2", "n5 -> n1"},
		},
		{
			name: "aligned",
			opts: Options{Aligned: true},
			want: []string{"n4 -> n6 [dir=none"},
		},
		{
			name:    "consensus",
			opts:    Options{Consensus: []dag.NodeID{2, 3, 4, 5}},
			want:    []string{`n4 [label="G", fillcolor="#ffc46b", penwidth=3`, `n3 -> n4 [penwidth=1.0, tooltip="1", color="#c2185b"]`},
			notWant: []string{`n6 [label="C", fillcolor="#7fb3ff", penwidth=3`},
		},
		{
			name: "detailed",
			opts: Options{Detailed: true},
			want: []string{`label="A\n2:2"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot, err := ToDOT(g, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
				t.Errorf("malformed DOT:\n%s", dot)
			}
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("DOT missing %q:\n%s", w, dot)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(dot, w) {
					t.Errorf("DOT contains %q:\n%s", w, dot)
				}
			}
		})
	}
}

func TestToDOTDeterministic(t *testing.T) {
	g := sampleGraph(t)
	first, _ := ToDOT(g, Options{Aligned: true})
	for range 5 {
		if again, _ := ToDOT(g, Options{Aligned: true}); again != first {
			t.Fatal("ToDOT output changed between calls")
		}
	}
}

func TestToDOTCycle(t *testing.T) {
	g := dag.New()
	a, _ := g.AddNode(alphabet.A)
	c, _ := g.AddNode(alphabet.C)
	_ = g.AddEdge(dag.Source, a)
	_ = g.AddEdge(a, c)
	_ = g.AddEdge(c, a)
	if _, err := ToDOT(g, Options{}); !errors.Is(err, dag.ErrCyclicGraph) {
		t.Errorf("error = %v, want ErrCyclicGraph", err)
	}
}

func TestPenWidth(t *testing.T) {
	tests := []struct {
		w    int
		want string
	}{
		{0, "1.0"},
		{1, "1.0"},
		{3, "2.0"},
		{11, "6.0"},
		{100, "6.0"},
	}
	for _, tt := range tests {
		if got := penWidth(tt.w); got != tt.want {
			t.Errorf("penWidth(%d) = %s, want %s", tt.w, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 44.00" width="62" height="44"><g/></svg>`
	if string(got) != want {
		t.Errorf("normalizeViewBox() = %s", got)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("normalizeViewBox() changed an svg without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	dot, err := ToDOT(sampleGraph(t), Options{})
	if err != nil {
		t.Fatal(err)
	}
	svg, err := RenderSVG(dot)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("RenderSVG() output lacks a normalized viewBox:\n%s", svg)
	}

	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("RenderSVG() accepted malformed DOT")
	}
}
