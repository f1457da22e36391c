package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/poagraph/pkg/align"
	apperr "github.com/matzehuels/poagraph/pkg/errors"
	"github.com/matzehuels/poagraph/pkg/poa"
)

func TestDefaultMatchesEngineDefaults(t *testing.T) {
	p, err := Default().Params()
	if err != nil {
		t.Fatal(err)
	}
	want := poa.DefaultParams()
	if p != want {
		t.Errorf("Default().Params() = %+v, want %+v", p, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, c *Config, p poa.Params)
	}{
		{
			name:  "empty file keeps defaults",
			input: "",
			check: func(t *testing.T, c *Config, p poa.Params) {
				if p.Align.Scoring.Match != 2 || p.Guide.K != 9 {
					t.Errorf("params = %+v", p)
				}
			},
		},
		{
			name: "partial override",
			input: `
[scoring]
mismatch = 6

[band]
mode = "exact"

[graph]
boundary_policy = "first-last"
`,
			check: func(t *testing.T, c *Config, p poa.Params) {
				if p.Align.Scoring.Mismatch != 6 || p.Align.Scoring.Match != 2 {
					t.Errorf("scoring = %+v", p.Align.Scoring)
				}
				if p.Align.Mode != align.ModeExact {
					t.Errorf("mode = %v, want exact", p.Align.Mode)
				}
				if p.Boundary != poa.BoundaryFirstLast {
					t.Errorf("boundary = %v", p.Boundary)
				}
			},
		},
		{
			name: "order and output",
			input: `
[order]
progressive = false
k = 5

[output]
include_consensus = true
case_sensitive = true

[limits]
max_sequences = 3
`,
			check: func(t *testing.T, c *Config, p poa.Params) {
				if p.Progressive || p.Guide.K != 5 || p.Guide.W != 6 {
					t.Errorf("order = %+v / %+v", p.Progressive, p.Guide)
				}
				if !c.Output.IncludeConsensus || !p.CaseSensitive {
					t.Errorf("output = %+v", c.Output)
				}
				if c.Limits.MaxSequences != 3 || c.Limits.MaxLength != apperr.DefaultLimits().MaxLength {
					t.Errorf("limits = %+v", c.Limits)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			p, err := c.Params()
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, c, p)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"syntax", "[scoring\nmatch = 2"},
		{"unknown key", "[scoring]\nmatchh = 2"},
		{"unknown table", "[colour]\nred = 1"},
		{"bad mode", "[band]\nmode = \"fast\""},
		{"bad mismatch policy", "[graph]\nmismatch_policy = \"replace\""},
		{"zero gap extend", "[scoring]\ngap_extend = 0"},
		{"negative band", "[band]\nwidth = -1"},
		{"k too large", "[order]\nk = 32"},
		{"negative limit", "[limits]\nmax_length = -1"},
		{"wrong type", "[scoring]\nmatch = \"two\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("Parse() succeeded")
			}
			if !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
				t.Errorf("code = %q, want INVALID_CONFIG (err = %v)", apperr.GetCode(err), err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.Scoring.GapOpen = 8
	c.Graph.MismatchPolicy = "new-node"

	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(Encode()) error = %v\n%s", err, buf.String())
	}
	if *got != *c {
		t.Errorf("round trip = %+v, want %+v", got, c)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poagraph.toml")
	if err := os.WriteFile(path, []byte("[scoring]\nmatch = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Scoring.Match != 3 {
		t.Errorf("match = %d, want 3", c.Scoring.Match)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("missing file: err = %v", err)
	}
}
