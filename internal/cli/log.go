// Package cli implements the poagraph command-line interface.
//
// Commands:
//   - msa: write a multiple sequence alignment (FASTA, text or JSON)
//   - consensus: write the consensus sequence
//   - dot: draw the alignment graph (DOT, SVG, PDF or PNG)
//   - view: browse an alignment interactively
//   - serve: run the HTTP API
//   - config: write or show the configuration
//   - cache: manage the result cache
//
// Results go to stdout or -o; status lines, spinners and logs go to stderr.
// --verbose (-v) turns on debug logging, which includes one line per folded
// sequence and every cache lookup.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs a stage's elapsed time, e.g. "Aligned 12 sequences (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
