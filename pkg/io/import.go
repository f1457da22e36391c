package io

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/matzehuels/poagraph/pkg/httputil"
	"github.com/matzehuels/poagraph/pkg/poa"
)

// Record is one named input sequence.
type Record struct {
	ID  string `json:"id"`
	Seq string `json:"seq"`
}

// Sequences returns the bare sequences of records, in order.
func Sequences(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Seq
	}
	return out
}

// ReadSequences decodes FASTA or plain-line input from r.
//
// In FASTA mode the record ID is the first whitespace-separated word of the
// header, and sequence lines are concatenated. A header with no sequence
// lines yields an empty sequence, and an empty header gets a "seqN" ID.
//
// ReadSequences does not close r.
func ReadSequences(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)

	var (
		records []Record
		fasta   bool
		started bool
		seq     strings.Builder
	)
	flush := func() {
		if fasta && len(records) > 0 {
			records[len(records)-1].Seq = seq.String()
			seq.Reset()
		}
	}

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if !started {
			if strings.TrimSpace(line) == "" {
				continue
			}
			started = true
			fasta = strings.HasPrefix(line, ">")
		}

		if !fasta {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			records = append(records, Record{ID: "seq" + strconv.Itoa(len(records)+1), Seq: line})
			continue
		}

		if strings.HasPrefix(line, ">") {
			flush()
			id := ""
			if f := strings.Fields(line[1:]); len(f) > 0 {
				id = f[0]
			}
			if id == "" {
				id = "seq" + strconv.Itoa(len(records)+1)
			}
			records = append(records, Record{ID: id})
			continue
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	flush()
	return records, nil
}

// ImportSequences reads the sequence file at path. See [Open] for how the
// path is interpreted.
func ImportSequences(path string) ([]Record, error) {
	return ImportSequencesContext(context.Background(), path)
}

// ImportSequencesContext is [ImportSequences] with a context for remote
// paths. An http or https path is downloaded with retries.
func ImportSequencesContext(ctx context.Context, path string) ([]Record, error) {
	if httputil.IsURL(path) {
		return FetchSequences(ctx, path)
	}
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	records, err := ReadSequences(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// FetchSequences downloads and decodes the sequence file at url. A ".gz"
// suffix is decompressed.
func FetchSequences(ctx context.Context, url string) ([]Record, error) {
	data, err := httputil.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	var r io.Reader = bytes.NewReader(data)
	if strings.HasSuffix(url, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", url, err)
		}
		defer gz.Close()
		r = gz
	}
	records, err := ReadSequences(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return records, nil
}

// Open returns a reader for path. "-" is standard input, and files ending
// in ".gz" are gunzipped.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	return struct {
		io.Reader
		io.Closer
	}{Reader: gz, Closer: f}, nil
}

// Graph describes a manually built graph: chains of symbols plus edges
// from the last node of one chain to the first node of another.
type Graph struct {
	Chains []string        `json:"chains"`
	Edges  []poa.ChainEdge `json:"edges"`
}

// ReadGraphJSON decodes a manual graph description from r. Unknown fields
// are rejected. ReadGraphJSON does not close r.
func ReadGraphJSON(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var g Graph
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i, e := range g.Edges {
		if e.From < 0 || e.From >= len(g.Chains) || e.To < 0 || e.To >= len(g.Chains) {
			return nil, fmt.Errorf("edge %d: %d->%d references a missing chain", i, e.From, e.To)
		}
	}
	return &g, nil
}

// ImportGraphJSON reads a manual graph description from path.
func ImportGraphJSON(path string) (*Graph, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadGraphJSON(rc)
}
