package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/poagraph/pkg/io"
	"github.com/matzehuels/poagraph/pkg/pipeline"
	"github.com/matzehuels/poagraph/pkg/render/nodelink"
)

// Diagram formats accepted by the dot command.
const (
	diagramDOT = "dot"
	diagramSVG = "svg"
	diagramPDF = "pdf"
	diagramPNG = "png"
)

type dotOpts struct {
	output    string
	format    string
	graphFile string  // JSON file with manual chains and edges
	detailed  bool    // node IDs and weights in labels
	aligned   bool    // draw aligned-node links
	sentinels bool    // draw Source and Sink
	noCons    bool    // skip consensus highlighting
	scale     float64 // PNG scale
	align     alignFlags
}

func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "dot [file...]",
		Short: "Draw the alignment graph",
		Long: `Draw the alignment graph as Graphviz DOT, SVG, PDF or PNG.

Sequences from the input files are folded into the graph. With --graph, the
graph is first built from manual chains and edges:

  {"chains": ["ACGT", "TTA"], "edges": [{"from": 0, "to": 1}]}

PDF and PNG output require rsvg-convert (librsvg).`,
		Example: `  poagraph dot reads.fa > graph.dot
  poagraph dot -f svg --aligned -o graph.svg reads.fa
  poagraph dot --graph chains.json -f png -o graph.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromPath(opts.output)
			}
			switch opts.format {
			case diagramDOT, diagramSVG, diagramPDF, diagramPNG:
			default:
				return fmt.Errorf("invalid format: %q (must be one of: dot, svg, pdf, png)", opts.format)
			}
			return c.runDOT(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, pdf, png (default from -o extension, else dot)")
	cmd.Flags().StringVar(&opts.graphFile, "graph", "", "JSON file with manual chains and edges")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and weights")
	cmd.Flags().BoolVar(&opts.aligned, "aligned", false, "link aligned nodes")
	cmd.Flags().BoolVar(&opts.sentinels, "sentinels", false, "draw the source and sink nodes")
	cmd.Flags().BoolVar(&opts.noCons, "no-consensus", false, "do not highlight the consensus path")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	opts.align.register(cmd)

	return cmd
}

func (c *CLI) runDOT(cmd *cobra.Command, args []string, opts *dotOpts) error {
	ctx := cmd.Context()
	cfg, err := c.effectiveConfig(cmd, &opts.align)
	if err != nil {
		return err
	}

	job := pipeline.Options{Config: cfg, RequireSequences: true}
	if opts.graphFile != "" {
		g, err := pkgio.ImportGraphJSON(opts.graphFile)
		if err != nil {
			return err
		}
		job.Chains, job.Edges = g.Chains, g.Edges
	}
	if len(args) > 0 || opts.graphFile == "" {
		recs, err := readInputs(cmd.Context(), args)
		if err != nil {
			return err
		}
		job.Sequences = pkgio.Sequences(recs)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	stop := c.track(ctx, len(job.Sequences))
	e, res, err := runner.BuildEngine(ctx, job)
	stop()
	if err != nil {
		return err
	}
	dopts := nodelink.Options{Detailed: opts.detailed, Aligned: opts.aligned, Sentinels: opts.sentinels}
	if !opts.noCons {
		dopts.Consensus = res.Consensus.Path
	}
	dot, err := nodelink.ToDOT(e.Graph(), dopts)
	if err != nil {
		return pipeline.Classify(err)
	}

	var data []byte
	switch opts.format {
	case diagramSVG:
		data, err = nodelink.RenderSVG(dot)
	case diagramPDF:
		data, err = nodelink.RenderPDF(dot)
	case diagramPNG:
		data, err = nodelink.RenderPNG(dot, opts.scale)
	default:
		data = []byte(dot)
	}
	if err != nil {
		return err
	}
	if err := writeOutput(opts.output, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}

	printSuccess("Drew graph with %d nodes", e.Graph().NodeCount())
	printStats(alignStats{sequences: len(job.Sequences), nodes: e.Graph().NodeCount()})
	if opts.output != "" {
		printFile(opts.output)
	} else if opts.format == diagramDOT {
		printNextStep("Render it", "poagraph dot -f svg -o graph.svg ...")
	}
	return nil
}

// formatFromPath picks a diagram format from the output extension.
func formatFromPath(path string) string {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."); ext {
	case diagramSVG, diagramPDF, diagramPNG:
		return ext
	default:
		return diagramDOT
	}
}
