package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/poagraph/pkg/io"
	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/pipeline"
)

// msaOpts holds the command-line flags for the msa command.
type msaOpts struct {
	output           string // output file; stdout if empty
	format           string // fasta, text or json
	includeConsensus bool   // append the consensus as an extra row
	refresh          bool   // bypass cached results
	align            alignFlags
}

func (c *CLI) msaCommand() *cobra.Command {
	opts := msaOpts{format: pkgio.FormatFASTA}

	cmd := &cobra.Command{
		Use:   "msa [file...]",
		Short: "Align sequences and write the multiple sequence alignment",
		Long: `Align sequences and write the multiple sequence alignment.

Input files may be FASTA or plain text with one sequence per line, optionally
gzipped. Inputs may also be http(s) URLs. With no file, or when file is -,
sequences are read from stdin.`,
		Example: `  poagraph msa reads.fa
  poagraph msa -f text --include-consensus reads.fa.gz
  cat reads.txt | poagraph msa -o aligned.fa`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pkgio.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runMSA(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: fasta, text, json")
	cmd.Flags().BoolVar(&opts.includeConsensus, "include-consensus", false, "append the consensus as an extra row")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	opts.align.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pkgio.FormatFASTA, pkgio.FormatText, pkgio.FormatJSON}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func (c *CLI) runMSA(cmd *cobra.Command, args []string, opts *msaOpts) error {
	ctx := cmd.Context()
	cfg, err := c.effectiveConfig(cmd, &opts.align)
	if err != nil {
		return err
	}
	recs, err := readInputs(ctx, args)
	if err != nil {
		return err
	}
	ids := recordIDs(recs)

	res, err := c.execute(ctx, pipeline.Options{
		Sequences:        pkgio.Sequences(recs),
		IDs:              ids,
		IncludeConsensus: opts.includeConsensus,
		Refresh:          opts.refresh,
		Config:           cfg,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(opts.output, func(w io.Writer) error {
		return pkgio.WriteMSA(w, res.MSA, ids, opts.format)
	}); err != nil {
		return err
	}
	printSuccess("Aligned %d sequences", len(recs))
	printStats(alignStats{
		sequences: res.Stats.Sequences,
		columns:   res.MSA.Length,
		nodes:     res.Stats.Nodes,
		fallbacks: res.Stats.Fallbacks,
		cached:    res.CacheInfo.Hit,
	})
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// execute runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	stop := c.track(ctx, len(opts.Sequences))
	res, err := runner.Execute(ctx, opts)
	stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Aligned %d sequences into %d columns", res.Stats.Sequences, res.MSA.Length))
	return res, nil
}

type consensusOpts struct {
	output  string
	id      string
	refresh bool
	align   alignFlags
}

func (c *CLI) consensusCommand() *cobra.Command {
	opts := consensusOpts{id: pkgio.ConsensusID}

	cmd := &cobra.Command{
		Use:   "consensus [file...]",
		Short: "Align sequences and write their consensus as FASTA",
		Example: `  poagraph consensus reads.fa
  poagraph consensus --id sample1 -o consensus.fa reads.fa`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConsensus(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.id, "id", opts.id, "FASTA record name")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	opts.align.register(cmd)

	return cmd
}

func (c *CLI) runConsensus(cmd *cobra.Command, args []string, opts *consensusOpts) error {
	ctx := cmd.Context()
	cfg, err := c.effectiveConfig(cmd, &opts.align)
	if err != nil {
		return err
	}
	recs, err := readInputs(ctx, args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	stop := c.track(ctx, len(recs))
	cons, hit, err := runner.Consensus(ctx, pipeline.Options{
		Sequences: pkgio.Sequences(recs),
		Refresh:   opts.refresh,
		Config:    cfg,
	})
	stop()
	if err != nil {
		return err
	}
	if cons == "" {
		printWarning("Consensus is empty")
	}

	if err := writeOutput(opts.output, func(w io.Writer) error {
		return pkgio.WriteConsensus(w, opts.id, cons)
	}); err != nil {
		return err
	}
	printSuccess("Consensus of %d sequences: %d bases", len(recs), len(cons))
	printStats(alignStats{sequences: len(recs), cached: hit})
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// track shows a spinner that follows fold progress until the returned
// function is called.
func (c *CLI) track(ctx context.Context, total int) (stop func()) {
	s := newSpinner(ctx, "Aligning %d sequences...", total)
	observability.Register(observability.Multi(
		observability.LogHooks{Logger: c.Logger},
		&foldProgress{s: s, total: total},
	))
	s.Start()
	return func() {
		s.Stop()
		observability.Register(observability.LogHooks{Logger: c.Logger})
	}
}

// writeOutput calls write with the file at path, or stdout if path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
