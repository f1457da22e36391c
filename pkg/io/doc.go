// Package io reads sequence sets and writes alignment results.
//
// # Input
//
// [ReadSequences] accepts either FASTA or plain text with one sequence per
// line. The format is detected from the first non-blank line: a leading '>'
// means FASTA, anything else means plain lines. In plain mode, blank lines
// and lines starting with '#' are skipped and records get IDs "seq1",
// "seq2", and so on.
//
// [ImportSequences] opens a path first. The path "-" reads standard input,
// and a ".gz" suffix is decompressed transparently. [ImportSequencesContext]
// also accepts http and https URLs, downloaded through [httputil.Fetch].
//
// Sequence characters are passed through unchanged; case folding and gap
// stripping happen in the engine.
//
// # Manual graphs
//
// [ReadGraphJSON] decodes a manual graph description used with
// [poa.Engine.AddNodesEdges]:
//
//	{
//	  "chains": ["ACG", "TT", "CC"],
//	  "edges": [{"from": 0, "to": 1}, {"from": 0, "to": 2}]
//	}
//
// # Output
//
// [WriteMSA] renders an alignment as aligned FASTA, as bare rows, or as
// JSON. [WriteConsensus] writes a consensus as a single FASTA record.
//
// [httputil.Fetch]: github.com/matzehuels/poagraph/pkg/httputil.Fetch
// [poa.Engine.AddNodesEdges]: github.com/matzehuels/poagraph/pkg/poa.Engine.AddNodesEdges
package io
