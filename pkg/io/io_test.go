package io

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/poagraph/pkg/msa"
)

func TestReadSequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Record
	}{
		{
			name:  "fasta",
			input: ">r1 first read\nACGT\nAC\n>r2\n\nTTGA\n",
			want:  []Record{{"r1", "ACGTAC"}, {"r2", "TTGA"}},
		},
		{
			name:  "fasta with empty record",
			input: ">a\n>b\nGG\n",
			want:  []Record{{"a", ""}, {"b", "GG"}},
		},
		{
			name:  "fasta with crlf",
			input: ">a\r\nAC\r\nGT\r\n",
			want:  []Record{{"a", "ACGT"}},
		},
		{
			name:  "plain lines",
			input: "\n# reads\nACGT\n\n  ttga  \nAC-GT\n",
			want:  []Record{{"seq1", "ACGT"}, {"seq2", "ttga"}, {"seq3", "AC-GT"}},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSequences(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadSequences() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ReadSequences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadSequencesEmptyHeader(t *testing.T) {
	recs, err := ReadSequences(strings.NewReader(">\nAC\n> \nGT\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{{"seq1", "AC"}, {"seq2", "GT"}}
	if !slices.Equal(recs, want) {
		t.Errorf("records = %v, want %v", recs, want)
	}
}

func TestImportSequencesGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fa.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(">x\nACGT\n>y\nAGGT\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	recs, err := ImportSequences(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := Sequences(recs); !slices.Equal(got, []string{"ACGT", "AGGT"}) {
		t.Errorf("Sequences() = %v", got)
	}

	if _, err := ImportSequences(filepath.Join(t.TempDir(), "missing.fa")); err == nil {
		t.Error("ImportSequences(missing) succeeded")
	}
}

func TestImportSequencesURL(t *testing.T) {
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte("ACGT\nAGGT\n"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reads.fa":
			w.Write([]byte(">x\nACGT\n>y\nAGGT\n"))
		case "/reads.txt.gz":
			w.Write(gz.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	for _, name := range []string{"/reads.fa", "/reads.txt.gz"} {
		recs, err := ImportSequencesContext(context.Background(), srv.URL+name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := Sequences(recs); !slices.Equal(got, []string{"ACGT", "AGGT"}) {
			t.Errorf("%s: Sequences() = %v", name, got)
		}
	}

	if _, err := ImportSequencesContext(context.Background(), srv.URL+"/missing.fa"); err == nil {
		t.Error("ImportSequencesContext(404) succeeded")
	}
}

func TestReadGraphJSON(t *testing.T) {
	g, err := ReadGraphJSON(strings.NewReader(`{"chains": ["ACG", "TT"], "edges": [{"from": 0, "to": 1}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Chains) != 2 || len(g.Edges) != 1 || g.Edges[0].To != 1 {
		t.Errorf("ReadGraphJSON() = %+v", g)
	}

	bad := []string{
		`{"chains": ["A"], "edges": [{"from": 0, "to": 1}]}`,
		`{"chains": ["A"], "nodes": []}`,
		`{"chains": `,
	}
	for _, in := range bad {
		if _, err := ReadGraphJSON(strings.NewReader(in)); err == nil {
			t.Errorf("ReadGraphJSON(%s) succeeded", in)
		}
	}
}

func TestWriteMSA(t *testing.T) {
	m := &msa.MSA{Rows: []string{"AC-T", "ACGT"}, Length: 4, NumSeqs: 2, Extra: "ACGT"}

	t.Run("fasta", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteMSA(&buf, m, []string{"r1"}, FormatFASTA); err != nil {
			t.Fatal(err)
		}
		want := ">r1\nAC-T\n>seq2\nACGT\n>consensus\nACGT\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteMSA(&buf, m, nil, FormatText); err != nil {
			t.Fatal(err)
		}
		if want := "AC-T\nACGT\nACGT\n"; buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteMSA(&buf, m, []string{"a", "b"}, FormatJSON); err != nil {
			t.Fatal(err)
		}
		var got alignmentJSON
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.Length != 4 || got.NumSeqs != 2 || got.Rows[1].ID != "b" || got.Consensus != "ACGT" {
			t.Errorf("json = %+v", got)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		if err := WriteMSA(&bytes.Buffer{}, m, nil, "clustal"); err == nil {
			t.Error("WriteMSA(clustal) succeeded")
		}
	})
}

func TestWriteConsensus(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConsensus(&buf, "", "ACGT"); err != nil {
		t.Fatal(err)
	}
	if want := ">consensus\nACGT\n"; buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
