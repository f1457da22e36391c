package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/poagraph/pkg/msa"
)

// Output formats accepted by [WriteMSA].
const (
	FormatFASTA = "fasta"
	FormatText  = "text"
	FormatJSON  = "json"
)

// ConsensusID names the consensus record in FASTA and JSON output.
const ConsensusID = "consensus"

// ValidateFormat checks that format is one of the supported output formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatFASTA, FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("invalid format: %q (must be one of: fasta, text, json)", format)
}

type alignmentJSON struct {
	Length    int      `json:"msa_length"`
	NumSeqs   int      `json:"n_seqs"`
	Rows      []Record `json:"rows"`
	Consensus string   `json:"consensus,omitempty"`
}

// WriteMSA writes m to w in the given format. ids names the rows; missing
// IDs default to "seqN". The extra row, if any, is written last under
// [ConsensusID].
func WriteMSA(w io.Writer, m *msa.MSA, ids []string, format string) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	rows := make([]Record, len(m.Rows))
	for i, r := range m.Rows {
		id := fmt.Sprintf("seq%d", i+1)
		if i < len(ids) && ids[i] != "" {
			id = ids[i]
		}
		rows[i] = Record{ID: id, Seq: r}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(alignmentJSON{Length: m.Length, NumSeqs: m.NumSeqs, Rows: rows, Consensus: m.Extra}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatText:
		var b strings.Builder
		for _, r := range rows {
			b.WriteString(r.Seq)
			b.WriteByte('\n')
		}
		if m.Extra != "" {
			b.WriteString(m.Extra)
			b.WriteByte('\n')
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		if m.Extra != "" {
			rows = append(rows, Record{ID: ConsensusID, Seq: m.Extra})
		}
		return WriteFASTA(w, rows)
	}
}

// WriteFASTA writes records as FASTA, one sequence line per record.
func WriteFASTA(w io.Writer, records []Record) error {
	var b strings.Builder
	for _, r := range records {
		b.WriteByte('>')
		b.WriteString(r.ID)
		b.WriteByte('\n')
		b.WriteString(r.Seq)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteConsensus writes seq as a single FASTA record named id, or
// [ConsensusID] if id is empty.
func WriteConsensus(w io.Writer, id, seq string) error {
	if id == "" {
		id = ConsensusID
	}
	return WriteFASTA(w, []Record{{ID: id, Seq: seq}})
}

// ExportMSA writes m to the file at path. See [WriteMSA].
func ExportMSA(m *msa.MSA, ids []string, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteMSA(f, m, ids, format)
}
