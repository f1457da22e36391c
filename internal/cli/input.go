package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poagraph/pkg/align"
	"github.com/matzehuels/poagraph/pkg/config"
	pkgio "github.com/matzehuels/poagraph/pkg/io"
)

// alignFlags holds per-run overrides of the configuration. Only flags the
// user actually set are applied.
type alignFlags struct {
	match          int
	mismatch       int
	gapOpen        int
	gapExtend      int
	band           string
	bandWidth      int
	bandFraction   float64
	noProgressive  bool
	mismatchPolicy string
	boundary       string
	caseSensitive  bool
	strict         bool
}

func (f *alignFlags) register(cmd *cobra.Command) {
	d := config.Default()
	fs := cmd.Flags()
	fs.IntVar(&f.match, "match", d.Scoring.Match, "match bonus")
	fs.IntVar(&f.mismatch, "mismatch", d.Scoring.Mismatch, "mismatch penalty")
	fs.IntVar(&f.gapOpen, "gap-open", d.Scoring.GapOpen, "gap open penalty")
	fs.IntVar(&f.gapExtend, "gap-extend", d.Scoring.GapExtend, "gap extension penalty")
	fs.StringVar(&f.band, "band", d.Band.Mode, "alignment mode: banded, exact")
	fs.IntVar(&f.bandWidth, "band-width", d.Band.Width, "minimum band half-width")
	fs.Float64Var(&f.bandFraction, "band-fraction", d.Band.Fraction, "band half-width as a fraction of sequence length")
	fs.BoolVar(&f.noProgressive, "no-progressive", false, "fold sequences in input order")
	fs.StringVar(&f.mismatchPolicy, "mismatch-policy", d.Graph.MismatchPolicy, "mismatch handling: aligned, new-node")
	fs.StringVar(&f.boundary, "boundary", d.Graph.BoundaryPolicy, "manual graph boundary policy: dangling, first-last")
	fs.BoolVar(&f.caseSensitive, "case-sensitive", false, "treat lowercase bases as N")
	fs.BoolVar(&f.strict, "strict", false, "reject characters outside ACGTN")

	_ = cmd.RegisterFlagCompletionFunc("band", cobra.FixedCompletions(
		[]string{align.ModeBanded.String(), align.ModeExact.String()}, cobra.ShellCompDirectiveNoFileComp))
}

// apply copies the flags the user set onto cfg and revalidates it.
func (f *alignFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("match", func() { cfg.Scoring.Match = f.match })
	set("mismatch", func() { cfg.Scoring.Mismatch = f.mismatch })
	set("gap-open", func() { cfg.Scoring.GapOpen = f.gapOpen })
	set("gap-extend", func() { cfg.Scoring.GapExtend = f.gapExtend })
	set("band", func() { cfg.Band.Mode = f.band })
	set("band-width", func() { cfg.Band.Width = f.bandWidth })
	set("band-fraction", func() { cfg.Band.Fraction = f.bandFraction })
	set("no-progressive", func() { cfg.Order.Progressive = !f.noProgressive })
	set("mismatch-policy", func() { cfg.Graph.MismatchPolicy = f.mismatchPolicy })
	set("boundary", func() { cfg.Graph.BoundaryPolicy = f.boundary })
	set("case-sensitive", func() { cfg.Output.CaseSensitive = f.caseSensitive })
	set("strict", func() { cfg.Limits.Strict = f.strict })
	return cfg.Validate()
}

// effectiveConfig loads the configuration and applies the command's overrides.
func (c *CLI) effectiveConfig(cmd *cobra.Command, f *alignFlags) (*config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readInputs reads sequence records from each path in order. No paths
// means stdin. URLs are downloaded.
func readInputs(ctx context.Context, paths []string) ([]pkgio.Record, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var all []pkgio.Record
	for _, p := range paths {
		recs, err := pkgio.ImportSequencesContext(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// recordIDs returns the record IDs, made unique across inputs.
func recordIDs(recs []pkgio.Record) []string {
	ids := make([]string, len(recs))
	seen := make(map[string]int, len(recs))
	for i, r := range recs {
		id := r.ID
		if n := seen[id]; n > 0 {
			id = fmt.Sprintf("%s_%d", r.ID, n+1)
		}
		seen[r.ID]++
		ids[i] = id
	}
	return ids
}
