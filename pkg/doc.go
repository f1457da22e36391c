// Package pkg provides the core libraries for poagraph partial-order alignment.
//
// # Overview
//
// poagraph folds DNA sequences one at a time into a partial-order alignment
// (POA) graph, then reads a multiple sequence alignment and a consensus
// sequence back out of it. The pkg directory is organized into four areas:
//
//  1. Engine: [alphabet], [dag], [align], [poa]
//  2. Extraction: [consensus], [msa]
//  3. Orchestration: [config], [pipeline], [cache], [observability]
//  4. Surfaces: [io], [render], [server]
//
// # Architecture
//
// The typical data flow through poagraph:
//
//	FASTA / plain text / manual graph JSON
//	         ↓
//	    [io] package (read records, fetch URLs)
//	         ↓
//	    [poa] package (encode, order, align, fold)
//	         ↓
//	    [dag] package (weighted graph + aligned-node rings)
//	         ↓
//	    [consensus] / [msa] packages (majority path, column assignment)
//	         ↓
//	    FASTA/text/JSON alignment, consensus, DOT/SVG diagram
//
// # Quick Start
//
// Align sequences and print the consensus:
//
//	import (
//	    "fmt"
//	    "github.com/matzehuels/poagraph/pkg/poa"
//	)
//
//	e, _ := poa.New(poa.DefaultParams(), nil)
//	res, _ := e.Align([]string{"ACGTACGT", "ACCTACGT", "ACGACGT"})
//	for _, row := range res.MSA.Rows {
//	    fmt.Println(row)
//	}
//	fmt.Println(res.Consensus)
//
// # Main Packages
//
// ## Engine
//
// [alphabet] - The 2-bit nucleotide codec plus N and gap symbols. Encoding
// folds case unless the codec is case sensitive.
//
// [dag] - The alignment graph. Source and Sink sentinels bracket every path,
// node weights count the sequences through a node, and nodes sharing an
// alignment column are linked into aligned rings.
//
// [align] - Sequence-to-graph alignment with affine gaps, run in a band
// around the diagonal with an exact fallback.
//
// [poa] - The engine. Orders sequences by minimizer similarity, folds them
// into the graph, and builds manual graphs from chains and edges.
//
// ## Extraction
//
// [consensus] - Heaviest path from Source to Sink.
//
// [msa] - Column assignment over the topological order and per-sequence
// gapped rows.
//
// ## Orchestration
//
// [config] - TOML configuration with defaults and validation.
//
// [pipeline] - Validate, align, extract and cache in one call. Used by the
// CLI and the HTTP server so both behave the same.
//
// [cache] - Result caching keyed by input hash and parameters, with file,
// Redis, MongoDB and null backends.
//
// [observability] - Hooks for alignment, cache and HTTP events.
//
// ## Surfaces
//
// [io] - Sequence input and alignment output formats.
//
// [render] - Graphviz diagrams of the graph and SVG conversion.
//
// [server] - HTTP API over [pipeline].
//
// # Common Workflows
//
// Build a graph by hand and read its consensus:
//
//	e, _ := poa.New(poa.DefaultParams(), nil)
//	_ = e.AddNodesEdges([]string{"ACG", "TT"}, []poa.ChainEdge{{From: 0, To: 1}})
//	c, _ := e.Consensus()
//	fmt.Println(c) // ACGTT
//
// Run through the cached pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{Sequences: seqs})
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/poa/...      # Specific package
//	go test -run Example ./... # Examples only
//
// [alphabet]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/alphabet
// [dag]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/dag
// [align]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/align
// [poa]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/poa
// [consensus]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/consensus
// [msa]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/msa
// [config]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/config
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/observability
// [io]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/render
// [server]: https://pkg.go.dev/github.com/matzehuels/poagraph/pkg/server
package pkg
