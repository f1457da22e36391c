// Package config loads poagraph's TOML configuration.
//
// A configuration file has one table per concern. Every key is optional;
// missing keys keep their [Default] value.
//
//	[scoring]
//	match = 2
//	mismatch = 4
//	gap_open = 4
//	gap_extend = 2
//
//	[band]
//	mode = "banded"   # or "exact"
//	width = 10
//	fraction = 0.01
//
//	[order]
//	progressive = true
//	k = 9
//	w = 6
//	min_w = 10
//
//	[graph]
//	mismatch_policy = "aligned"   # or "new-node"
//	boundary_policy = "dangling"  # or "first-last"
//
//	[output]
//	case_sensitive = false
//	include_consensus = false
//	require_sequences = false
//
//	[limits]
//	max_sequences = 10000
//	max_length = 100000
//	strict = false
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/poagraph/pkg/align"
	apperr "github.com/matzehuels/poagraph/pkg/errors"
	"github.com/matzehuels/poagraph/pkg/poa"
)

// Config is the full set of tunables.
type Config struct {
	Scoring Scoring       `toml:"scoring" json:"scoring"`
	Band    Band          `toml:"band" json:"band"`
	Order   Order         `toml:"order" json:"order"`
	Graph   Graph         `toml:"graph" json:"graph"`
	Output  Output        `toml:"output" json:"output"`
	Limits  apperr.Limits `toml:"limits" json:"limits"`
}

// Scoring holds the affine gap scoring magnitudes.
type Scoring struct {
	Match     int `toml:"match" json:"match"`
	Mismatch  int `toml:"mismatch" json:"mismatch"`
	GapOpen   int `toml:"gap_open" json:"gap_open"`
	GapExtend int `toml:"gap_extend" json:"gap_extend"`
}

// Band selects banded or exact alignment and the band size.
type Band struct {
	Mode     string  `toml:"mode" json:"mode"`
	Width    int     `toml:"width" json:"width"`
	Fraction float64 `toml:"fraction" json:"fraction"`
}

// Order controls progressive folding.
type Order struct {
	Progressive bool `toml:"progressive" json:"progressive"`
	K           int  `toml:"k" json:"k"`
	W           int  `toml:"w" json:"w"`
	MinW        int  `toml:"min_w" json:"min_w"`
}

// Graph holds the graph-building policies.
type Graph struct {
	MismatchPolicy string `toml:"mismatch_policy" json:"mismatch_policy"`
	BoundaryPolicy string `toml:"boundary_policy" json:"boundary_policy"`
}

// Output controls encoding and what the pipeline returns.
type Output struct {
	CaseSensitive    bool `toml:"case_sensitive" json:"case_sensitive"`
	IncludeConsensus bool `toml:"include_consensus" json:"include_consensus"`
	RequireSequences bool `toml:"require_sequences" json:"require_sequences"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := align.DefaultScoring()
	b := align.DefaultBand()
	g := poa.DefaultGuide()
	return &Config{
		Scoring: Scoring{Match: s.Match, Mismatch: s.Mismatch, GapOpen: s.GapOpen, GapExtend: s.GapExtend},
		Band:    Band{Mode: align.ModeBanded.String(), Width: b.Width, Fraction: b.Fraction},
		Order:   Order{Progressive: true, K: g.K, W: g.W, MinW: g.MinW},
		Graph: Graph{
			MismatchPolicy: poa.MismatchAligned.String(),
			BoundaryPolicy: poa.BoundaryDangling.String(),
		},
		Limits: apperr.DefaultLimits(),
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of [Default] and validates the result. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every value by converting the configuration to engine
// parameters.
func (c *Config) Validate() error {
	if _, err := c.Params(); err != nil {
		return err
	}
	return apperr.ValidateLimits(c.Limits)
}

// Params converts the configuration to engine parameters.
func (c *Config) Params() (poa.Params, error) {
	invalid := func(err error) (poa.Params, error) {
		return poa.Params{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	mode, err := align.ParseMode(c.Band.Mode)
	if err != nil {
		return invalid(err)
	}
	mismatch, err := poa.ParseMismatchPolicy(c.Graph.MismatchPolicy)
	if err != nil {
		return invalid(err)
	}
	boundary, err := poa.ParseBoundaryPolicy(c.Graph.BoundaryPolicy)
	if err != nil {
		return invalid(err)
	}
	p := poa.Params{
		Align: align.Options{
			Scoring: align.Scoring{
				Match:     c.Scoring.Match,
				Mismatch:  c.Scoring.Mismatch,
				GapOpen:   c.Scoring.GapOpen,
				GapExtend: c.Scoring.GapExtend,
			},
			Mode: mode,
			Band: align.Band{Width: c.Band.Width, Fraction: c.Band.Fraction},
		},
		Mismatch:      mismatch,
		Boundary:      boundary,
		Progressive:   c.Order.Progressive,
		Guide:         poa.Guide{K: c.Order.K, W: c.Order.W, MinW: c.Order.MinW},
		CaseSensitive: c.Output.CaseSensitive,
	}
	if err := p.Validate(); err != nil {
		return invalid(err)
	}
	return p, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
