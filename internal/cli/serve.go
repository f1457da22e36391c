package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/pipeline"
	"github.com/matzehuels/poagraph/pkg/server"
)

type serveOpts struct {
	addr        string
	timeout     time.Duration
	maxBody     int64
	concurrency int
	align       alignFlags
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        server.DefaultAddr,
		timeout:     server.DefaultTimeout,
		maxBody:     server.DefaultMaxBodyBytes,
		concurrency: pipeline.DefaultBatchConcurrency,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alignment HTTP API",
		Long: `Serve the alignment HTTP API.

Endpoints:
  GET  /healthz
  GET  /statsz
  POST /v1/msa        ?format=json|fasta|text
  POST /v1/consensus  ?format=json|fasta
  POST /v1/dot        ?format=dot|svg&aligned=true&detailed=true
  POST /v1/batch

Alignment parameters come from the configuration and flags; request
bodies carry only sequences and manual graphs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().IntVar(&opts.concurrency, "batch-concurrency", opts.concurrency, "parallel jobs per batch request")
	opts.align.register(cmd)

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	ctx := cmd.Context()
	cfg, err := c.effectiveConfig(cmd, &opts.align)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	counters := &observability.Counters{}
	observability.Register(observability.Multi(counters, observability.LogHooks{Logger: c.Logger}))

	srv := server.New(runner, server.Options{
		Config:           cfg,
		MaxBodyBytes:     opts.maxBody,
		Timeout:          opts.timeout,
		BatchConcurrency: opts.concurrency,
		Counters:         counters,
	}, c.Logger)
	printInfo("Serving on %s", opts.addr)
	return srv.ListenAndServe(ctx, opts.addr)
}
